package git

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	gitbackend "github.com/thiagokokada/gitk-graph/internal/git/backend"
)

const DefaultCapacity = 1000

type ServiceOptions struct {
	Logger *slog.Logger
	// Capacity presizes the cache; it still grows past it.
	Capacity int
	// Limit stops a load after that many commits. Zero loads everything.
	Limit int
	// MinGitVersion is checked against the producer recorded in the input.
	MinGitVersion string
	Clock         func() time.Time
}

// Service loads a Backend into a RevisionsCache.
type Service struct {
	// mu serializes loads and local change refreshes so lane assignment sees
	// one commit stream at a time.
	mu sync.Mutex

	backend gitbackend.Backend
	cache   *RevisionsCache
	logger  *slog.Logger
	opts    ServiceOptions

	head     Hash
	headName string
}

// LoadStats summarizes one Load.
type LoadStats struct {
	LoadID           string
	Generation       uint64
	Commits          int
	SkippedCommits   int
	Refs             int
	SkippedRefs      int
	SkippedDiffLines int
	Head             Hash
	HeadName         string
	Duration         time.Duration
}

// Open opens a capture directory or a repository at path.
func Open(path string, opts ServiceOptions) (*Service, error) {
	b, err := gitbackend.Open(path)
	if err != nil {
		return nil, err
	}
	return NewService(b, opts), nil
}

func NewService(b gitbackend.Backend, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	cacheOpts := []Option{WithLogger(logger)}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, WithClock(opts.Clock))
	}
	return &Service{
		backend: b,
		cache:   New(cacheOpts...),
		logger:  logger,
		opts:    opts,
	}
}

func (s *Service) RepoPath() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

// Cache exposes the read side of the loaded history.
func (s *Service) Cache() *RevisionsCache {
	return s.cache
}

// Load replaces the cache content with the backend's current history.
func (s *Service) Load(ctx context.Context) (LoadStats, error) {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return LoadStats{}, fmt.Errorf("repository root not set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	stats := LoadStats{LoadID: uuid.NewString()}
	logger := s.logger.With(slog.String("load", stats.LoadID))
	logger.Debug("load start", slog.String("repo", s.backend.RepoPath()))

	s.checkProducerLocked(logger)

	headHash, headName, ok, err := s.backend.HeadState()
	if err != nil {
		return stats, fmt.Errorf("resolve HEAD: %w", err)
	}
	s.head, s.headName = ZeroHash, ""
	if ok {
		h, valid := ParseHash(headHash)
		if !valid {
			logger.Warn("ignoring malformed HEAD", slog.String("head", headHash))
		} else {
			s.head, s.headName = h, headName
		}
	}
	stats.Head, stats.HeadName = s.head, s.headName

	refs, err := s.backend.ListRefs()
	if err != nil {
		return stats, fmt.Errorf("list refs: %w", err)
	}

	s.cache.Clear()
	stats.Generation = s.cache.Configure(s.opts.Capacity)

	byHash, skippedRefs := buildReferences(refs, s.head.String(), s.headName)
	if len(skippedRefs) > 0 {
		logger.Warn("skipping refs with malformed ids", slog.Any("refs", skippedRefs))
	}
	for h, ref := range byHash {
		s.cache.InsertReference(h, ref)
	}
	stats.Refs, stats.SkippedRefs = len(byHash), len(skippedRefs)

	if err := s.refreshWipLocked(logger); err != nil {
		return stats, err
	}

	scan, err := s.startScanLocked(logger, stats.Generation)
	if err != nil {
		return stats, err
	}
	defer scan.close()
	skippedLines, err := scan.run(ctx, s, s.opts.Limit)
	stats.Commits, stats.SkippedCommits, stats.SkippedDiffLines = scan.returned, scan.skipped, skippedLines
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}
	logger.Debug("load done",
		slog.Int("commits", stats.Commits),
		slog.Int("skipped_commits", stats.SkippedCommits),
		slog.Int("refs", stats.Refs),
		slog.Int("skipped_diff_lines", stats.SkippedDiffLines),
		slog.String("head", stats.HeadName),
		slog.Duration("elapsed", stats.Duration),
	)
	return stats, nil
}

// RefreshWip re-reads local changes into the work-in-progress row and
// reports whether its file set changed. It needs a prior Load.
func (s *Service) RefreshWip() (bool, error) {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return false, fmt.Errorf("repository root not set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ := s.cache.GetRevisionFile(ZeroHash, s.head)
	if err := s.refreshWipLocked(s.logger); err != nil {
		return false, err
	}
	after, _ := s.cache.GetRevisionFile(ZeroHash, s.head)
	return !before.Equal(after), nil
}

func (s *Service) refreshWipLocked(logger *slog.Logger) error {
	status, err := s.backend.LocalChangesStatus()
	if err != nil {
		return fmt.Errorf("local changes: %w", err)
	}
	worktree, err := s.backend.WorktreeDiffText(false)
	if err != nil {
		return fmt.Errorf("worktree diff: %w", err)
	}
	staged, err := s.backend.WorktreeDiffText(true)
	if err != nil {
		return fmt.Errorf("index diff: %w", err)
	}
	s.cache.SetUntrackedFiles(status.Untracked)
	changed := s.cache.UpdateWipCommit(s.head, worktree, staged)
	logger.Debug("local changes refreshed",
		slog.Bool("changed", changed),
		slog.Bool("worktree", status.HasWorktree),
		slog.Bool("staged", status.HasStaged),
		slog.Int("untracked", len(status.Untracked)),
		slog.Int("conflicted", len(status.Conflicted)),
	)
	return nil
}

func (s *Service) checkProducerLocked(logger *slog.Logger) {
	out, err := s.backend.ProducerVersion()
	if err != nil {
		logger.Debug("producer version unavailable", slog.Any("error", err))
		return
	}
	if out == "" {
		return
	}
	if err := gitbackend.CheckProducerVersion(out, s.opts.MinGitVersion); err != nil {
		logger.Warn("captured with an unsupported git", slog.Any("error", err))
	}
}
