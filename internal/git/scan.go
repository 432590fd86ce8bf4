package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gitbackend "github.com/thiagokokada/gitk-graph/internal/git/backend"
)

// scanSession streams one load's log records into the cache.
type scanSession struct {
	logger    *slog.Logger
	logStream gitbackend.LogStream
	gen       uint64

	exhausted bool
	returned  int
	skipped   int
}

func (s *Service) startScanLocked(logger *slog.Logger, gen uint64) (*scanSession, error) {
	stream, err := s.backend.StartLogStream()
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	logger.Debug("scan session initialized", slog.Uint64("generation", gen))
	return &scanSession{logger: logger, logStream: stream, gen: gen}, nil
}

func (s *scanSession) close() {
	if s.logStream != nil {
		if err := s.logStream.Close(); err != nil {
			s.logger.Debug("git log stream close", slog.Any("error", err))
		}
	}
	s.logStream = nil
	s.exhausted = true
}

func (s *scanSession) next() (*gitbackend.Commit, error) {
	if s.exhausted || s.logStream == nil {
		return nil, io.EOF
	}
	commit, err := s.logStream.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.exhausted = true
		}
		return nil, err
	}
	return commit, nil
}

// run inserts commits until the stream ends, limit rows were stored or ctx
// is done. Rows start at 1; row 0 belongs to local changes.
func (s *scanSession) run(ctx context.Context, svc *Service, limit int) (skippedDiffLines int, err error) {
	for limit <= 0 || s.returned < limit {
		if err := ctx.Err(); err != nil {
			return skippedDiffLines, err
		}
		commit, err := s.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return skippedDiffLines, nil
			}
			return skippedDiffLines, fmt.Errorf("iterate commits: %w", err)
		}
		info, badParents, err := commitInfoFromBackend(commit, 1+s.returned)
		if err != nil {
			s.logger.Warn("skipping commit", slog.String("sha", commit.Hash), slog.Any("error", err))
			s.skipped++
			continue
		}
		if len(badParents) > 0 {
			s.logger.Warn("dropping malformed parent ids",
				slog.String("sha", info.Hash.String()),
				slog.Any("parents", badParents),
			)
		}
		if !svc.cache.InsertCommitInfoGen(s.gen, info) {
			s.skipped++
			continue
		}
		s.returned++

		n, err := svc.loadRevisionFiles(info)
		if err != nil {
			return skippedDiffLines, err
		}
		skippedDiffLines += n
	}
	return skippedDiffLines, nil
}

// loadRevisionFiles parses the raw diff of info against its first parent.
func (s *Service) loadRevisionFiles(info CommitInfo) (int, error) {
	text, err := s.backend.CommitDiffText(info.Hash.String())
	if err != nil {
		return 0, fmt.Errorf("diff %s: %w", ShortHash(info.Hash), err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	res := s.cache.ParseDiff(text)
	s.cache.InsertRevisionFile(info.Hash, info.Parent(0), res.Files)
	return res.Skipped, nil
}

func commitInfoFromBackend(c *gitbackend.Commit, row int) (CommitInfo, []string, error) {
	if c == nil {
		return CommitInfo{}, nil, fmt.Errorf("empty log record")
	}
	h, ok := ParseHash(c.Hash)
	if !ok {
		return CommitInfo{}, nil, fmt.Errorf("malformed commit id %q", c.Hash)
	}
	if h.IsZero() {
		return CommitInfo{}, nil, fmt.Errorf("zero commit id")
	}
	parents, bad := parseHashes(c.ParentHashes)
	shortLog, longLog := splitMessage(c.Message)
	return CommitInfo{
		Hash:      h,
		Parents:   parents,
		Author:    formatSignature(c.Author),
		Committer: formatSignature(c.Committer),
		Time:      c.Author.When.Unix(),
		ShortLog:  shortLog,
		LongLog:   longLog,
		OrderIdx:  row,
		Boundary:  c.Boundary,
	}, bad, nil
}

func formatSignature(sig gitbackend.Signature) string {
	if sig.Email == "" {
		return sig.Name
	}
	return fmt.Sprintf("%s <%s>", sig.Name, sig.Email)
}

// splitMessage returns the subject line and the remaining body.
func splitMessage(msg string) (string, string) {
	msg = strings.TrimSpace(msg)
	subject, body, _ := strings.Cut(msg, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}
