package lanes

// Type is the visual role of a single lane slot in one row of the graph.
type Type uint8

const (
	Empty Type = iota
	Active
	NotActive
	MergeFork
	MergeForkR
	MergeForkL
	Join
	JoinR
	JoinL
	Head
	HeadR
	HeadL
	Tail
	TailR
	TailL
	Cross
	CrossEmpty
	Initial
	Branch
	Unapplied
	Applied
	Boundary
	BoundaryC
	BoundaryR
	BoundaryL
)

var typeNames = [...]string{
	Empty:      "empty",
	Active:     "active",
	NotActive:  "not-active",
	MergeFork:  "merge-fork",
	MergeForkR: "merge-fork-r",
	MergeForkL: "merge-fork-l",
	Join:       "join",
	JoinR:      "join-r",
	JoinL:      "join-l",
	Head:       "head",
	HeadR:      "head-r",
	HeadL:      "head-l",
	Tail:       "tail",
	TailR:      "tail-r",
	TailL:      "tail-l",
	Cross:      "cross",
	CrossEmpty: "cross-empty",
	Initial:    "initial",
	Branch:     "branch",
	Unapplied:  "unapplied",
	Applied:    "applied",
	Boundary:   "boundary",
	BoundaryC:  "boundary-c",
	BoundaryR:  "boundary-r",
	BoundaryL:  "boundary-l",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

func (t Type) IsHead() bool { return t == Head || t == HeadR || t == HeadL }

func (t Type) IsTail() bool { return t == Tail || t == TailR || t == TailL }

func (t Type) IsJoin() bool { return t == Join || t == JoinR || t == JoinL }

func (t Type) IsMergeFork() bool { return t == MergeFork || t == MergeForkR || t == MergeForkL }

func (t Type) IsBoundary() bool {
	return t == Boundary || t == BoundaryC || t == BoundaryR || t == BoundaryL
}

// IsNode reports whether the slot holds the commit dot of its row.
func (t Type) IsNode() bool {
	return t.IsMergeFork() || t == BoundaryC || t == BoundaryR || t == BoundaryL ||
		t == Branch || t == Initial || t == Boundary || t == Applied || t == Unapplied
}
