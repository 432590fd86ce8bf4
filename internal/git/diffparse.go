package git

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DiffResult is the outcome of parsing one raw diff listing.
type DiffResult struct {
	Files RevisionFiles
	// Skipped counts marker lines that could not be parsed and were dropped.
	Skipped int
}

// ParseDiffFormat parses the output of "git diff-tree -r -m -C --raw" (or
// diff-index/diff-files --raw) into a RevisionFiles set. Path strings are
// interned through names, which may be shared across calls.
//
// Lines that do not start with ':' are commit headers; each one starts the
// block of the next parent, so changes can be attributed per parent of a merge.
// Malformed lines are dropped and counted, never reported as errors.
func ParseDiffFormat(buf string, names *FileNames) DiffResult {
	b := newRevFilesBuilder(names)
	skipped := b.parseRaw(buf)
	return DiffResult{Files: b.build(), Skipped: skipped}
}

func (b *revFilesBuilder) parseRaw(buf string) (skipped int) {
	parent := 0
	for line := range strings.SplitSeq(buf, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if line[0] != ':' {
			parent++
			continue
		}
		attributed := max(parent, 1)
		if !b.parseRawLine(line, attributed) {
			slog.Debug("dropping raw diff line", slog.String("line", line))
			skipped++
		}
	}
	return skipped
}

func (b *revFilesBuilder) parseRawLine(line string, parent int) bool {
	tab := strings.IndexByte(line, '\t')
	if tab == -1 {
		return false
	}
	if strings.HasPrefix(line, "::") {
		// Combined diffs carry neither origin nor similarity, so renames and
		// copies in one of the parents are shown as modifications.
		path := line[strings.LastIndexByte(line, '\t')+1:]
		if path == "" {
			return false
		}
		b.add(path, StatusModified, "", parent)
		return true
	}
	statusStart := strings.LastIndexByte(line[:tab], ' ') + 1
	if statusStart == 0 {
		return false
	}
	if tab == statusStart+1 {
		path := line[tab+1:]
		if path == "" {
			return false
		}
		b.add(path, statusFromLetter(line[statusStart]), "", parent)
		return true
	}
	return b.addExtended(line[statusStart:], parent)
}

// addExtended handles "Rnn\torig\tdest" and "Cnn\torig\tdest": the
// destination is recorded as a new file and, for renames only, the origin as
// a deleted one.
func (b *revFilesBuilder) addExtended(rowSt string, parent int) bool {
	fields := strings.FieldsFunc(rowSt, func(r rune) bool { return r == '\t' })
	if len(fields) != 3 || len(fields[0]) < 1 {
		return false
	}
	kind, orig, dest := fields[0], fields[1], fields[2]
	var flag StatusFlag
	switch kind[0] {
	case 'R':
		flag = StatusRenamed
	case 'C':
		flag = StatusCopied
	default:
		return false
	}
	similarity, _ := strconv.Atoi(kind[1:])
	ext := fmt.Sprintf("%s --> %s (%d%%)", orig, dest, similarity)

	b.add(dest, StatusNew|flag, ext, parent)
	if flag == StatusRenamed {
		b.add(orig, StatusDeleted|flag, ext, parent)
	}
	return true
}

func statusFromLetter(c byte) StatusFlag {
	switch c {
	case 'M', 'T':
		return StatusModified
	case 'U':
		return StatusModified | StatusConflict
	case 'D':
		return StatusDeleted
	case 'A':
		return StatusNew
	case '?':
		return StatusUnknown
	default:
		slog.Debug("unknown raw diff status", slog.String("status", string(c)))
		return StatusModified
	}
}
