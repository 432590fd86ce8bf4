package git

import (
	"slices"
	"strconv"
	"strings"

	"github.com/thiagokokada/gitk-graph/internal/git/lanes"
)

// Field selects the textual attribute of a commit used by field searches.
type Field uint8

const (
	FieldSha Field = iota
	FieldParentsSha
	FieldCommitter
	FieldAuthor
	FieldDate
	FieldShortLog
	FieldLongLog
)

var fieldNames = map[string]Field{
	"sha":       FieldSha,
	"parents":   FieldParentsSha,
	"committer": FieldCommitter,
	"author":    FieldAuthor,
	"date":      FieldDate,
	"summary":   FieldShortLog,
	"message":   FieldLongLog,
}

// FieldFromString maps a user supplied field name ("summary", "author", ...) to a Field.
func FieldFromString(s string) (Field, bool) {
	f, ok := fieldNames[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

func (f Field) String() string {
	for name, v := range fieldNames {
		if v == f {
			return name
		}
	}
	return "unknown"
}

// CommitInfo is one row of the history listing.
type CommitInfo struct {
	Hash      Hash
	Parents   []Hash
	Author    string
	Committer string
	// Time is the author time in unix seconds.
	Time     int64
	ShortLog string
	LongLog  string
	OrderIdx int
	Boundary bool
	IsWip    bool
	Lanes    []lanes.Type
}

// IsValid reports whether c came from the cache rather than being the zero value
// returned by a failed lookup.
func (c CommitInfo) IsValid() bool {
	return c.IsWip || !c.Hash.IsZero()
}

// Parent returns the n-th parent or ZeroHash.
func (c CommitInfo) Parent(n int) Hash {
	if n < 0 || n >= len(c.Parents) {
		return ZeroHash
	}
	return c.Parents[n]
}

func (c CommitInfo) ParentsCount() int { return len(c.Parents) }

func (c CommitInfo) IsMerge() bool { return len(c.Parents) > 1 }

// FieldString renders the given field for substring searches.
func (c CommitInfo) FieldString(f Field) string {
	switch f {
	case FieldSha:
		return c.Hash.String()
	case FieldParentsSha:
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			parents[i] = p.String()
		}
		return strings.Join(parents, " ")
	case FieldCommitter:
		return c.Committer
	case FieldAuthor:
		return c.Author
	case FieldDate:
		return strconv.FormatInt(c.Time, 10)
	case FieldShortLog:
		return c.ShortLog
	case FieldLongLog:
		return c.LongLog
	default:
		return ""
	}
}

// Equal compares every attribute, lanes included.
func (c CommitInfo) Equal(o CommitInfo) bool {
	return c.Hash == o.Hash &&
		slices.Equal(c.Parents, o.Parents) &&
		c.Author == o.Author &&
		c.Committer == o.Committer &&
		c.Time == o.Time &&
		c.ShortLog == o.ShortLog &&
		c.LongLog == o.LongLog &&
		c.OrderIdx == o.OrderIdx &&
		c.Boundary == o.Boundary &&
		c.IsWip == o.IsWip &&
		slices.Equal(c.Lanes, o.Lanes)
}

func (c CommitInfo) clone() CommitInfo {
	c.Parents = slices.Clone(c.Parents)
	c.Lanes = slices.Clone(c.Lanes)
	return c
}

func (c CommitInfo) laneCommit() lanes.Commit {
	parents := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		parents[i] = p.String()
	}
	return lanes.Commit{ID: c.Hash.String(), Parents: parents, Boundary: c.Boundary}
}
