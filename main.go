package main

import (
	"log"

	"github.com/thiagokokada/gitk-graph/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitk-graph: %v", err)
	}
}
