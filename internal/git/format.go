package git

import (
	"fmt"
	"strings"
	"time"
)

// FormatCommitHeader renders a commit in the style of "git show" headers.
func FormatCommitHeader(c CommitInfo) string {
	var b strings.Builder
	if c.IsWip {
		b.WriteString("Local changes\n")
	} else {
		fmt.Fprintf(&b, "commit %s\n", c.Hash)
	}
	if c.IsMerge() {
		short := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			short[i] = ShortHash(p)
		}
		fmt.Fprintf(&b, "Merge: %s\n", strings.Join(short, " "))
	}
	appendSignatureLine(&b, "Author", c.Author, c.Time)
	committer := c.Committer
	if committer == "" {
		committer = c.Author
	}
	appendSignatureLine(&b, "Committer", committer, 0)
	b.WriteString("\n")
	message := strings.TrimRight(c.ShortLog, "\n")
	if c.LongLog != "" {
		message += "\n\n" + c.LongLog
	}
	if message == "" {
		b.WriteString("    (no commit message)\n")
		return b.String()
	}
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

func appendSignatureLine(b *strings.Builder, label, who string, when int64) {
	fmt.Fprintf(b, "%s: %s", label, who)
	if when != 0 {
		fmt.Fprintf(b, "  %s", time.Unix(when, 0).UTC().Format("2006-01-02 15:04:05 -0700"))
	}
	b.WriteByte('\n')
}

// FormatFileList renders one "<letter> <path>" line per file, with the
// rename or copy description when present.
func FormatFileList(rf RevisionFiles) string {
	if rf.Count() == 0 {
		return "No file level changes.\n"
	}
	var b strings.Builder
	for i := range rf.Count() {
		fmt.Fprintf(&b, "%s %s", rf.Status(i).Letter(), rf.File(i))
		if ext := rf.ExtendedStatus(i); ext != "" {
			fmt.Fprintf(&b, "  [%s]", ext)
		}
		if st := rf.Status(i); st.Has(StatusInIndex) {
			b.WriteString("  (staged)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
