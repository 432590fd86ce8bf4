package git

import "slices"

// StatusFlag classifies a changed path. Flags accumulate with bitwise OR
// when a path is reported more than once, e.g. staged and conflicted.
type StatusFlag uint8

const (
	StatusModified StatusFlag = 1 << iota
	StatusDeleted
	StatusNew
	StatusRenamed
	StatusCopied
	StatusUnknown
	StatusInIndex
	StatusConflict

	StatusAny StatusFlag = 0xff
)

func (s StatusFlag) Has(f StatusFlag) bool { return s&f != 0 }

// Letter returns the one-letter code used in text listings.
func (s StatusFlag) Letter() string {
	switch {
	case s.Has(StatusConflict):
		return "U"
	case s.Has(StatusUnknown):
		return "?"
	case s.Has(StatusRenamed) && s.Has(StatusNew):
		return "R"
	case s.Has(StatusCopied):
		return "C"
	case s.Has(StatusNew):
		return "A"
	case s.Has(StatusDeleted):
		return "D"
	default:
		return "M"
	}
}

// FileChange is one path of a RevisionFiles set.
type FileChange struct {
	Path string
	// Dir and Name are FileNames handles of the directory and leaf parts of Path.
	Dir  int
	Name int

	Status StatusFlag
	// ExtStatus describes renames and copies as "orig --> dest (NN%)".
	ExtStatus string
	// MergeParents lists the 1-based parents whose diff reported the path.
	MergeParents []int
}

// RevisionFiles lists the paths changed between a commit and one of its parents.
type RevisionFiles struct {
	Files []FileChange
	// OnlyModified is true while every path is a plain modification.
	OnlyModified bool
}

func (rf RevisionFiles) Count() int { return len(rf.Files) }

func (rf RevisionFiles) File(i int) string {
	if i < 0 || i >= len(rf.Files) {
		return ""
	}
	return rf.Files[i].Path
}

func (rf RevisionFiles) Status(i int) StatusFlag {
	if i < 0 || i >= len(rf.Files) {
		return 0
	}
	return rf.Files[i].Status
}

// StatusCmp reports whether the i-th path carries any bit of f.
func (rf RevisionFiles) StatusCmp(i int, f StatusFlag) bool {
	return rf.Status(i).Has(f)
}

func (rf RevisionFiles) ExtendedStatus(i int) string {
	if i < 0 || i >= len(rf.Files) {
		return ""
	}
	return rf.Files[i].ExtStatus
}

func (rf RevisionFiles) IndexOf(path string) int {
	return slices.IndexFunc(rf.Files, func(f FileChange) bool { return f.Path == path })
}

func (rf RevisionFiles) Equal(o RevisionFiles) bool {
	if rf.OnlyModified != o.OnlyModified {
		return false
	}
	return slices.EqualFunc(rf.Files, o.Files, func(a, b FileChange) bool {
		return a.Path == b.Path &&
			a.Status == b.Status &&
			a.ExtStatus == b.ExtStatus &&
			slices.Equal(a.MergeParents, b.MergeParents)
	})
}

func (rf RevisionFiles) Clone() RevisionFiles {
	out := RevisionFiles{OnlyModified: rf.OnlyModified}
	if rf.Files != nil {
		out.Files = make([]FileChange, len(rf.Files))
		for i, f := range rf.Files {
			f.MergeParents = slices.Clone(f.MergeParents)
			out.Files[i] = f
		}
	}
	return out
}

// revFilesBuilder appends paths while keeping one entry per path.
type revFilesBuilder struct {
	rf    RevisionFiles
	names *FileNames
	pos   map[string]int
}

func newRevFilesBuilder(names *FileNames) *revFilesBuilder {
	if names == nil {
		names = NewFileNames()
	}
	return &revFilesBuilder{
		rf:    RevisionFiles{OnlyModified: true},
		names: names,
		pos:   make(map[string]int),
	}
}

func (b *revFilesBuilder) add(path string, status StatusFlag, ext string, parent int) int {
	if status&^(StatusModified|StatusInIndex|StatusConflict) != 0 {
		b.rf.OnlyModified = false
	}
	if i, ok := b.pos[path]; ok {
		f := &b.rf.Files[i]
		f.Status |= status
		if f.ExtStatus == "" {
			f.ExtStatus = ext
		}
		if parent > 0 && !slices.Contains(f.MergeParents, parent) {
			f.MergeParents = append(f.MergeParents, parent)
		}
		return i
	}
	dir, name, canonical := b.names.Intern(path)
	f := FileChange{Path: canonical, Dir: dir, Name: name, Status: status, ExtStatus: ext}
	if parent > 0 {
		f.MergeParents = []int{parent}
	}
	b.rf.Files = append(b.rf.Files, f)
	b.pos[canonical] = len(b.rf.Files) - 1
	return len(b.rf.Files) - 1
}

func (b *revFilesBuilder) orStatus(i int, status StatusFlag) {
	b.rf.Files[i].Status |= status
}

func (b *revFilesBuilder) indexOf(path string) (int, bool) {
	i, ok := b.pos[path]
	return i, ok
}

func (b *revFilesBuilder) build() RevisionFiles {
	return b.rf
}
