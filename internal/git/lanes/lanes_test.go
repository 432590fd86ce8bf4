package lanes

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

func feed(e *Engine, commits ...Commit) [][]Type {
	rows := make([][]Type, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, e.Update(c))
	}
	return rows
}

func TestEngineLinearChain(t *testing.T) {
	t.Parallel()

	var e Engine
	rows := feed(&e,
		Commit{ID: "c", Parents: []string{"b"}},
		Commit{ID: "b", Parents: []string{"a"}},
		Commit{ID: "a"},
	)
	want := [][]Type{{Branch}, {Active}, {Initial}}
	for i := range want {
		if !slices.Equal(rows[i], want[i]) {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
	if e.Tracks("a") {
		t.Fatalf("engine still tracks the root commit")
	}
}

func TestEngineMerge(t *testing.T) {
	t.Parallel()

	var e Engine
	merge := e.Update(Commit{ID: "m", Parents: []string{"a", "b"}})
	if want := []Type{MergeForkL, HeadR}; !slices.Equal(merge, want) {
		t.Fatalf("merge row = %v, want %v", merge, want)
	}
	if !e.Tracks("a") || !e.Tracks("b") {
		t.Fatalf("expected both parents tracked, got %v", e.Expected())
	}
	if e.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.Len())
	}

	rows := feed(&e,
		Commit{ID: "a", Parents: []string{"r"}},
		Commit{ID: "b", Parents: []string{"r"}},
		Commit{ID: "r"},
	)
	want := [][]Type{
		{Active, NotActive},
		{NotActive, Active},
		{MergeForkL, TailR},
	}
	for i := range want {
		if !slices.Equal(rows[i], want[i]) {
			t.Fatalf("row %d = %v, want %v", i+1, rows[i], want[i])
		}
	}
	if e.Len() != 1 {
		t.Fatalf("expected fork to collapse lanes, got %d lanes", e.Len())
	}
}

func TestEngineForkAfterUnrelatedTip(t *testing.T) {
	t.Parallel()

	var e Engine
	rows := feed(&e,
		Commit{ID: "a", Parents: []string{"b"}},
		Commit{ID: "d", Parents: []string{"b"}},
		Commit{ID: "b", Parents: []string{"e"}},
	)
	want := [][]Type{
		{Branch},
		{NotActive, Branch},
		{MergeForkL, TailR},
	}
	for i := range want {
		if !slices.Equal(rows[i], want[i]) {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
	if got := e.Expected(); !slices.Equal(got, []string{"e"}) {
		t.Fatalf("Expected() = %v, want [e]", got)
	}
	if e.ActiveLane() != 0 {
		t.Fatalf("ActiveLane() = %d, want 0", e.ActiveLane())
	}
}

func TestEngineBoundary(t *testing.T) {
	t.Parallel()

	var e Engine
	rows := feed(&e,
		Commit{ID: "a", Parents: []string{"x"}},
		Commit{ID: "x", Parents: []string{"y"}, Boundary: true},
	)
	if !slices.Equal(rows[1], []Type{Boundary}) {
		t.Fatalf("boundary row = %v", rows[1])
	}
	if e.Tracks("y") {
		t.Fatalf("boundary commit must not expect its parent")
	}

	// A later tip reuses the lane freed by the boundary.
	row := e.Update(Commit{ID: "z", Parents: []string{"w"}})
	if !slices.Equal(row, []Type{Branch}) {
		t.Fatalf("row after boundary = %v, want [branch]", row)
	}
}

func TestEngineMergeJoinEndsTrackCrossSeparately(t *testing.T) {
	t.Parallel()

	e := Engine{
		types: []Type{Active, Cross, NotActive},
		next:  []string{"a", "b", "c"},
	}
	e.setBoundary(false)
	e.setMerge([]string{"a", "b", "c"})

	// Only the middle parent sat on a crossing lane, so the right end
	// still closes the join.
	if want := []Type{MergeForkL, Join, JoinR}; !slices.Equal(e.types, want) {
		t.Fatalf("merge lanes = %v, want %v", e.types, want)
	}
}

func TestEngineSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	var e Engine
	first := e.Update(Commit{ID: "m", Parents: []string{"a", "b"}})
	saved := slices.Clone(first)
	feed(&e,
		Commit{ID: "a", Parents: []string{"r"}},
		Commit{ID: "b", Parents: []string{"r"}},
	)
	if !slices.Equal(first, saved) {
		t.Fatalf("snapshot mutated by later updates: %v, want %v", first, saved)
	}
}

func TestEngineClear(t *testing.T) {
	t.Parallel()

	var e Engine
	e.Update(Commit{ID: "a", Parents: []string{"b"}})
	e.Clear()
	if !e.IsEmpty() || e.Len() != 0 || e.Tracks("b") {
		t.Fatalf("expected empty engine after Clear, got %v", e.Expected())
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	if got := MergeForkL.String(); got != "merge-fork-l" {
		t.Fatalf("String() = %q", got)
	}
	if got := Type(200).String(); got != "unknown" {
		t.Fatalf("String() = %q", got)
	}
}

func TestEngineLinearChainProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "length")
		var e Engine
		for i := n; i > 0; i-- {
			c := Commit{ID: fmt.Sprint(i)}
			if i > 1 {
				c.Parents = []string{fmt.Sprint(i - 1)}
			}
			if row := e.Update(c); len(row) != 1 {
				t.Fatalf("row for %s has %d lanes, want 1", c.ID, len(row))
			}
		}
	})
}

func TestEngineMergeAddsAtMostOneLaneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var e Engine
		// Unrelated tips so the lane set is not trivial.
		tips := rapid.IntRange(0, 4).Draw(t, "tips")
		for i := range tips {
			e.Update(Commit{ID: fmt.Sprintf("tip%d", i), Parents: []string{fmt.Sprintf("base%d", i)}})
		}
		above := e.Update(Commit{ID: "top", Parents: []string{"merge"}})
		parents := []string{"p1", "p2"}
		row := e.Update(Commit{ID: "merge", Parents: parents})
		if len(row) > len(above)+1 {
			t.Fatalf("merge row has %d lanes, previous row had %d", len(row), len(above))
		}
		for _, p := range parents {
			if !e.Tracks(p) {
				t.Fatalf("parent %s not tracked after merge, expected %v", p, e.Expected())
			}
		}
	})
}
