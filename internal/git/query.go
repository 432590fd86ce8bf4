package git

import (
	"log/slog"
	"strings"
)

// GetCommitInfoByRow returns the commit displayed at row.
func (c *RevisionsCache) GetCommitInfoByRow(row int) (CommitInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if row < 0 || row >= len(c.rows) || !c.rows[row].used {
		return CommitInfo{}, false
	}
	return c.rows[row].info.clone(), true
}

// GetCommitInfo looks a commit up by full id or id prefix. When several
// stored commits share the prefix the one with the lowest row wins.
func (c *RevisionsCache) GetCommitInfo(id string) (CommitInfo, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return CommitInfo{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if h, ok := ParseHash(id); ok {
		if row, ok := c.index[h]; ok {
			return c.rows[row].info.clone(), true
		}
		return CommitInfo{}, false
	}

	found, matches := -1, 0
	for row, s := range c.rows {
		if !s.used || !hashPrefixMatch(s.info.Hash, id) {
			continue
		}
		if idx, ok := c.index[s.info.Hash]; !ok || idx != row {
			continue
		}
		if found < 0 {
			found = row
		}
		matches++
	}
	if found < 0 {
		return CommitInfo{}, false
	}
	if matches > 1 {
		c.logger.Debug("ambiguous commit prefix",
			slog.String("prefix", id),
			slog.Int("matches", matches),
			slog.String("picked", c.rows[found].info.Hash.String()),
		)
	}
	return c.rows[found].info.clone(), true
}

// GetCommitInfoByField returns the first commit at or after startingRow
// whose field contains text. When nothing matches and startingRow is past
// the top, the search wraps around from row 0.
func (c *RevisionsCache) GetCommitInfoByField(field Field, text string, startingRow int) (CommitInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	startingRow = max(startingRow, 0)
	row := c.searchLocked(field, text, startingRow)
	if row < 0 && startingRow > 0 {
		row = c.searchLocked(field, text, 0)
	}
	if row < 0 {
		return CommitInfo{}, false
	}
	return c.rows[row].info.clone(), true
}

func (c *RevisionsCache) searchLocked(field Field, text string, from int) int {
	for row := from; row < len(c.rows); row++ {
		s := c.rows[row]
		if s.used && strings.Contains(s.info.FieldString(field), text) {
			return row
		}
	}
	return -1
}

// GetRefNames returns the names of the categories in mask attached to h:
// tags, branches, remote branches then other refs. The patch name is
// returned only when mask is exactly RefApplied or RefUnapplied.
func (c *RevisionsCache) GetRefNames(h Hash, mask RefType) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.checkRefLocked(h, mask) == 0 {
		return nil
	}
	ref := c.refs[h]
	var out []string
	if mask&RefTag != 0 {
		out = append(out, ref.Tags...)
	}
	if mask&RefBranch != 0 {
		out = append(out, ref.Branches...)
	}
	if mask&RefRemoteBranch != 0 {
		out = append(out, ref.RemoteBranches...)
	}
	if mask&RefOther != 0 {
		out = append(out, ref.Refs...)
	}
	if mask == RefApplied || mask == RefUnapplied {
		out = append(out, ref.Patch)
	}
	return out
}

// Labels returns the decorations of h, HEAD first.
func (c *RevisionsCache) Labels(h Hash) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.refs[h]
	if !ok {
		return nil
	}
	return ref.Labels()
}

// PendingLocalChanges reports whether every local change is an untracked
// file, i.e. nothing tracked is modified. It is false when there is no
// work-in-progress row.
func (c *RevisionsCache) PendingLocalChanges() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.index[ZeroHash]
	if !ok {
		return false
	}
	wip := c.rows[row].info
	rf := c.revFiles[RevisionKey{Commit: ZeroHash, Parent: wip.Parent(0)}]
	return rf.Count() == len(c.untracked)
}
