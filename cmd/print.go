package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/thiagokokada/gitk-graph/internal/git"
)

const wipHashPlaceholder = "-------"

// printer writes listings; reloads from the watcher share it with the
// initial load, so writes are serialized.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	maxCols int
	now     func() time.Time
}

func (p *printer) printGraph(cache *git.RevisionsCache) {
	p.mu.Lock()
	defer p.mu.Unlock()

	type row struct {
		graph string
		info  git.CommitInfo
	}
	var rows []row
	width := 0
	for i := range cache.Count() {
		ci, ok := cache.GetCommitInfoByRow(i)
		if !ok {
			continue
		}
		graph := strings.TrimRight(git.GraphLine(ci.Lanes, p.maxCols), " ")
		width = max(width, len(graph))
		rows = append(rows, row{graph: graph, info: ci})
	}
	now := p.now()
	for _, r := range rows {
		ci := r.info
		hash := wipHashPlaceholder
		if !ci.IsWip {
			hash = git.ShortHash(ci.Hash)
		}
		fmt.Fprintf(p.w, "%-*s %s %-14s %-16s %s%s\n",
			width, r.graph,
			hash,
			relativeTime(ci.Time, now),
			authorName(ci.Author),
			ci.ShortLog,
			decorations(cache.Labels(ci.Hash), ci.IsWip),
		)
	}
}

func (p *printer) printCommit(cache *git.RevisionsCache, ci git.CommitInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, git.FormatCommitHeader(ci))
	if !ci.IsWip {
		if labels := cache.Labels(ci.Hash); len(labels) > 0 {
			fmt.Fprintf(p.w, "Refs: %s\n", strings.Join(labels, ", "))
		}
	}
	fmt.Fprintln(p.w)
	rf, ok := cache.GetRevisionFile(ci.Hash, ci.Parent(0))
	if !ok {
		rf = git.RevisionFiles{}
	}
	fmt.Fprint(p.w, git.FormatFileList(rf))
}

func (p *printer) printSeparator(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\n-- %s at %s --\n", reason, p.now().Format(time.TimeOnly))
}

func relativeTime(unix int64, now time.Time) string {
	if unix == 0 {
		return ""
	}
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}

func authorName(author string) string {
	name, _, _ := strings.Cut(author, " <")
	return name
}

// decorations renders labels like "git log --decorate"; the local changes
// row never carries any.
func decorations(labels []string, wip bool) string {
	if wip || len(labels) == 0 {
		return ""
	}
	return " (" + strings.Join(labels, ", ") + ")"
}

func commaInt(n int) string {
	return humanize.Comma(int64(n))
}
