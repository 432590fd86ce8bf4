package backend

import "time"

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type Commit struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Committer    Signature
	Message      string
	// Boundary marks commits at the edge of the captured window ("git log --boundary").
	Boundary bool
}

type LocalChanges struct {
	HasWorktree bool
	HasStaged   bool
	Untracked   []string
	Conflicted  []string
}

type RefKind uint8

const (
	RefKindBranch RefKind = iota
	RefKindRemoteBranch
	RefKindTag
	// RefKindPatch is an applied stacked-git patch (refs/patches/<branch>/<name>).
	RefKindPatch
	// RefKindOther covers any other ref namespace, e.g. refs/stash or refs/notes/commits.
	RefKindOther
)

type Ref struct {
	Hash string
	Kind RefKind
	Name string // short name: main, origin/main, v1
}
