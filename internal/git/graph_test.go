package git

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/gitk-graph/internal/git/lanes"
)

func assertGolden(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	t.Fatalf("output mismatch:\n%s", diff)
}

func renderGraph(c *RevisionsCache, maxCols int) string {
	var b strings.Builder
	for row := range c.Count() {
		ci, ok := c.GetCommitInfoByRow(row)
		if !ok {
			continue
		}
		b.WriteString(strings.TrimRight(GraphLine(ci.Lanes, maxCols), " "))
		b.WriteString(" ")
		b.WriteString(ci.ShortLog)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestGraphMergeHistory(t *testing.T) {
	t.Parallel()

	c := newWipCache(t)
	merge, left, right, root := testHash(0), testHash(1), testHash(2), testHash(3)
	c.UpdateWipCommit(merge, "", "")
	for _, ci := range []CommitInfo{
		testCommit(merge, 1, "merge", left, right),
		testCommit(left, 2, "left", root),
		testCommit(right, 3, "right", root),
		testCommit(root, 4, "root"),
	} {
		if !c.InsertCommitInfo(ci) {
			t.Fatalf("insert %s rejected", ci.ShortLog)
		}
	}

	want := strings.Join([]string{
		"* No local changes",
		"* \\ merge",
		"* | left",
		"| * right",
		"* / root",
	}, "\n") + "\n"
	assertGolden(t, renderGraph(c, 0), want)
}

func TestGraphTokens(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		got := GraphTokens(nil, 10)
		if len(got) != 1 || got[0] != "*" {
			t.Fatalf("expected lone node, got %#v", got)
		}
	})
	t.Run("glyphs", func(t *testing.T) {
		row := []lanes.Type{
			lanes.Empty, lanes.CrossEmpty, lanes.NotActive, lanes.Active,
			lanes.Boundary, lanes.HeadL, lanes.TailR, lanes.Join, lanes.Cross, lanes.MergeForkR,
		}
		got := GraphLine(row, 0)
		want := "  - | * o \\ / + + *"
		if got != want {
			t.Fatalf("GraphLine = %q, want %q", got, want)
		}
	})
	t.Run("caps columns", func(t *testing.T) {
		got := GraphTokens([]lanes.Type{lanes.Active, lanes.NotActive, lanes.NotActive}, 2)
		if len(got) != 2 || got[0] != "*" || got[1] != "|" {
			t.Fatalf("unexpected tokens %#v", got)
		}
	})
}
