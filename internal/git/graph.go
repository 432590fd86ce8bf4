package git

import (
	"strings"

	"github.com/thiagokokada/gitk-graph/internal/git/lanes"
)

// GraphTokens renders a lane snapshot as one glyph per lane, capped to
// maxCols when positive. An empty snapshot yields a lone node so rows stay legible.
func GraphTokens(row []lanes.Type, maxCols int) []string {
	if len(row) == 0 {
		return []string{"*"}
	}
	if maxCols > 0 && len(row) > maxCols {
		row = row[:maxCols]
	}
	tokens := make([]string, len(row))
	for i, t := range row {
		tokens[i] = laneGlyph(t)
	}
	return tokens
}

// GraphLine joins GraphTokens with spaces.
func GraphLine(row []lanes.Type, maxCols int) string {
	return strings.Join(GraphTokens(row, maxCols), " ")
}

func laneGlyph(t lanes.Type) string {
	switch {
	case t == lanes.Empty:
		return " "
	case t == lanes.CrossEmpty:
		return "-"
	case t == lanes.NotActive:
		return "|"
	case t.IsBoundary():
		return "o"
	case t == lanes.Active, t.IsNode():
		return "*"
	case t.IsHead():
		return "\\"
	case t.IsTail():
		return "/"
	case t.IsJoin(), t == lanes.Cross:
		return "+"
	default:
		return "?"
	}
}
