package git

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/thiagokokada/gitk-graph/internal/git/lanes"
)

// RevisionKey identifies the diff between a commit and one of its parents.
type RevisionKey struct {
	Commit Hash
	Parent Hash
}

type slot struct {
	info CommitInfo
	used bool
}

// RevisionsCache holds the loaded history: rows in display order, an id
// index, per-transition file sets, references and the work-in-progress row.
//
// One loader mutates the cache while any number of readers query it. The
// cache starts locked; Configure opens it for a load and Clear locks it again.
type RevisionsCache struct {
	mu sync.RWMutex

	logger *slog.Logger
	now    func() time.Time

	rows  []slot
	index map[Hash]int
	// frontier holds stored commits no stored commit names as a parent.
	frontier   map[Hash]struct{}
	referenced map[Hash]struct{}

	revFiles  map[RevisionKey]RevisionFiles
	refs      map[Hash]Reference
	untracked []string

	lanes lanes.Engine
	names *FileNames

	locked     bool
	cleared    bool
	generation uint64
}

type Option func(*RevisionsCache)

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *RevisionsCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the time source of the work-in-progress row.
func WithClock(now func() time.Time) Option {
	return func(c *RevisionsCache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) *RevisionsCache {
	c := &RevisionsCache{
		logger:     slog.Default(),
		now:        time.Now,
		index:      make(map[Hash]int),
		frontier:   make(map[Hash]struct{}),
		referenced: make(map[Hash]struct{}),
		revFiles:   make(map[RevisionKey]RevisionFiles),
		refs:       make(map[Hash]Reference),
		names:      NewFileNames(),
		locked:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure prepares the cache for a load of capacity commits plus the
// work-in-progress row, unlocks it and returns the new load generation.
// Existing rows keep their sizing unless the cache was cleared.
func (c *RevisionsCache) Configure(capacity int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	capacity = max(capacity, 0)
	c.logger.Debug("configuring revisions cache", slog.Int("capacity", capacity))
	if len(c.rows) == 0 || c.cleared {
		// One extra slot for the work-in-progress row.
		c.rows = make([]slot, capacity+1)
		c.cleared = false
	}
	c.locked = false
	c.generation++
	return c.generation
}

// InsertCommitInfo stores ci at row ci.OrderIdx and assigns its lanes.
// It reports whether the commit was stored.
func (c *RevisionsCache) InsertCommitInfo(ci CommitInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(ci)
}

// InsertCommitInfoGen is InsertCommitInfo for loaders that may have been
// superseded: inserts tagged with an old generation are dropped.
func (c *RevisionsCache) InsertCommitInfoGen(gen uint64, ci CommitInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("dropping commit from superseded load",
			slog.String("sha", ci.Hash.String()),
			slog.Uint64("generation", gen),
			slog.Uint64("current", c.generation),
		)
		return false
	}
	return c.insertLocked(ci)
}

func (c *RevisionsCache) insertLocked(ci CommitInfo) bool {
	sha := ci.Hash.String()
	switch {
	case c.locked:
		c.logger.Warn("revisions cache is locked", slog.String("sha", sha))
		return false
	case ci.IsWip || ci.Hash.IsZero():
		c.logger.Warn("zero id is reserved for local changes", slog.Int("row", ci.OrderIdx))
		return false
	case ci.OrderIdx < 0:
		c.logger.Warn("rejecting commit with negative row", slog.String("sha", sha), slog.Int("row", ci.OrderIdx))
		return false
	case ci.OrderIdx == 0 && len(c.rows) > 0 && c.rows[0].used && c.rows[0].info.IsWip:
		c.logger.Warn("row 0 holds local changes", slog.String("sha", sha))
		return false
	}
	if _, ok := c.index[ci.Hash]; ok {
		c.logger.Info("commit already in cache", slog.String("sha", sha))
		return false
	}

	info := ci.clone()
	info.Lanes = c.lanes.Update(info.laneCommit())

	if info.OrderIdx >= len(c.rows) {
		c.logger.Debug("growing revisions cache", slog.String("sha", sha), slog.Int("row", info.OrderIdx))
		c.rows = append(c.rows, make([]slot, info.OrderIdx+1-len(c.rows))...)
	}
	c.dropRowLocked(info.OrderIdx, info.Hash)
	c.rows[info.OrderIdx] = slot{info: info, used: true}
	c.index[info.Hash] = info.OrderIdx

	for _, p := range info.Parents {
		delete(c.frontier, p)
		c.referenced[p] = struct{}{}
	}
	if _, ok := c.referenced[info.Hash]; !ok {
		c.frontier[info.Hash] = struct{}{}
	}
	return true
}

// dropRowLocked forgets the commit currently stored at row unless it is keep.
func (c *RevisionsCache) dropRowLocked(row int, keep Hash) {
	old := c.rows[row]
	if !old.used || old.info.Hash == keep {
		return
	}
	c.logger.Debug("overwriting row",
		slog.Int("row", row),
		slog.String("old", old.info.Hash.String()),
		slog.String("new", keep.String()),
	)
	if idx, ok := c.index[old.info.Hash]; ok && idx == row {
		delete(c.index, old.info.Hash)
	}
	delete(c.frontier, old.info.Hash)
}

// InsertRevisionFile stores the file set between commit and parent and
// reports whether the stored content changed. Root commits use ZeroHash as
// parent.
func (c *RevisionsCache) InsertRevisionFile(commit, parent Hash, files RevisionFiles) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertRevisionFileLocked(commit, parent, files)
}

func (c *RevisionsCache) insertRevisionFileLocked(commit, parent Hash, files RevisionFiles) bool {
	if commit.IsZero() && parent.IsZero() {
		return false
	}
	key := RevisionKey{Commit: commit, Parent: parent}
	if old, ok := c.revFiles[key]; ok && old.Equal(files) {
		return false
	}
	c.logger.Debug("adding revision files",
		slog.String("commit", commit.String()),
		slog.String("parent", parent.String()),
		slog.Int("files", files.Count()),
	)
	c.revFiles[key] = files.Clone()
	return true
}

func (c *RevisionsCache) GetRevisionFile(commit, parent Hash) (RevisionFiles, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rf, ok := c.revFiles[RevisionKey{Commit: commit, Parent: parent}]
	if !ok {
		return RevisionFiles{}, false
	}
	return rf.Clone(), true
}

func (c *RevisionsCache) ContainsRevisionFile(commit, parent Hash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.revFiles[RevisionKey{Commit: commit, Parent: parent}]
	return ok
}

// ParseDiff parses a raw diff listing with the cache's shared name table.
func (c *RevisionsCache) ParseDiff(buf string) DiffResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ParseDiffFormat(buf, c.names)
}

// InternedNames reports the sizes of the directory and file name tables.
func (c *RevisionsCache) InternedNames() (dirs, names int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names.Dirs(), c.names.Names()
}

func (c *RevisionsCache) InsertReference(h Hash, ref Reference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Debug("adding reference", slog.String("sha", h.String()))
	c.refs[h] = ref.clone()
}

func (c *RevisionsCache) RemoveReference(h Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.refs, h)
}

func (c *RevisionsCache) GetReference(h Hash) (Reference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.refs[h]
	if !ok {
		return Reference{}, false
	}
	return ref.clone(), true
}

func (c *RevisionsCache) CountReferences() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.refs)
}

// CheckRef returns the bits of mask set on the reference of h.
func (c *RevisionsCache) CheckRef(h Hash, mask RefType) RefType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkRefLocked(h, mask)
}

func (c *RevisionsCache) checkRefLocked(h Hash, mask RefType) RefType {
	ref, ok := c.refs[h]
	if !ok || !ref.IsValid() {
		return 0
	}
	return ref.Type & mask
}

func (c *RevisionsCache) SetUntrackedFiles(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.untracked = slices.Clone(paths)
}

func (c *RevisionsCache) UntrackedFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.untracked)
}

// Clear locks the cache and drops every index, file set, reference and the
// lane state. Rows stay readable by position until the next Configure, which
// reallocates them.
func (c *RevisionsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
	c.cleared = true
	clear(c.index)
	clear(c.frontier)
	clear(c.referenced)
	clear(c.revFiles)
	clear(c.refs)
	c.untracked = nil
	c.lanes.Clear()
	c.names.Reset()
}

// Count returns the number of row slots, including empty ones.
func (c *RevisionsCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

func (c *RevisionsCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *RevisionsCache) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// Frontier returns the stored commits no stored commit descends from, in row order.
func (c *RevisionsCache) Frontier() []Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Hash, 0, len(c.frontier))
	for h := range c.frontier {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b Hash) int { return c.index[a] - c.index[b] })
	return out
}
