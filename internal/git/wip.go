package git

import (
	"log/slog"
	"slices"
)

const (
	wipNoChanges = "No local changes"
	wipChanges   = "Local changes"
	wipAuthor    = "-"
)

// UpdateWipCommit rebuilds the work-in-progress row from the working tree
// diff (against the index) and the index diff (against HEAD), plus the
// untracked files set with SetUntrackedFiles. The row always lives at
// position 0 and is replaced in place. It reports whether the file set of
// the row changed; nothing happens while the cache is locked.
func (c *RevisionsCache) UpdateWipCommit(parent Hash, diffIndex, diffIndexCached string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		c.logger.Warn("revisions cache is locked, skipping local changes refresh")
		return false
	}
	c.logger.Debug("updating local changes row", slog.String("parent", parent.String()))

	rf, skipped := c.workDirFilesLocked(diffIndex, diffIndexCached)
	if skipped > 0 {
		c.logger.Debug("dropped malformed local diff lines", slog.Int("skipped", skipped))
	}
	changed := c.insertRevisionFileLocked(ZeroHash, parent, rf)

	summary := wipChanges
	if rf.Count() == len(c.untracked) {
		summary = wipNoChanges
	}
	info := CommitInfo{
		Hash:      ZeroHash,
		Author:    wipAuthor,
		Committer: wipAuthor,
		Time:      c.now().Unix(),
		ShortLog:  summary,
		OrderIdx:  0,
		IsWip:     true,
	}
	if !parent.IsZero() {
		info.Parents = []Hash{parent}
	}

	if len(c.rows) == 0 {
		c.rows = make([]slot, 1)
	}
	if prev := c.rows[0]; prev.used && prev.info.IsWip && prev.info.Lanes != nil {
		info.Lanes = slices.Clone(prev.info.Lanes)
	} else {
		info.Lanes = c.lanes.Update(info.laneCommit())
	}

	c.dropRowLocked(0, ZeroHash)
	c.rows[0] = slot{info: info, used: true}
	c.index[ZeroHash] = 0
	return changed
}

func (c *RevisionsCache) workDirFilesLocked(diffIndex, diffIndexCached string) (RevisionFiles, int) {
	b := newRevFilesBuilder(c.names)
	skipped := b.parseRaw(diffIndex)
	for _, path := range c.untracked {
		b.add(path, StatusUnknown, "", 1)
	}

	cached := newRevFilesBuilder(c.names)
	skipped += cached.parseRaw(diffIndexCached)
	for _, f := range cached.rf.Files {
		extra := StatusInIndex
		if f.Status.Has(StatusConflict) {
			extra |= StatusConflict
		}
		if i, ok := b.indexOf(f.Path); ok {
			b.orStatus(i, extra)
			continue
		}
		// Staged only: the working tree matches the index.
		b.add(f.Path, f.Status|extra, f.ExtStatus, 1)
	}

	rf := b.build()
	rf.OnlyModified = false
	return rf, skipped
}
