package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitk-graph/internal/debounce"
	"github.com/thiagokokada/gitk-graph/internal/git"
	gitbackend "github.com/thiagokokada/gitk-graph/internal/git/backend"
)

// reloadState remembers whether any event of the current burst touched
// history, as opposed to local changes only.
type reloadState struct {
	mu      sync.Mutex
	history bool
}

func (r *reloadState) mark(history bool) {
	r.mu.Lock()
	r.history = r.history || history
	r.mu.Unlock()
}

func (r *reloadState) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.history
	r.history = false
	return h
}

// watchAndReload reprints the listing after changes below the repository
// path until ctx is done.
func watchAndReload(ctx context.Context, svc *git.Service, p *printer, delay time.Duration, logger *slog.Logger) error {
	root := svc.RepoPath()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error("watcher close", slog.Any("error", err))
		}
	}()
	for _, path := range watchPaths(root) {
		logger.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	var state reloadState
	d := debounce.New(delay, func(events int) {
		if ctx.Err() != nil {
			return
		}
		reload(ctx, svc, p, state.take(), events, logger)
	})
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			history := touchesHistory(root, ev.Name)
			logger.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
				slog.Bool("history", history),
			)
			state.mark(history)
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func reload(ctx context.Context, svc *git.Service, p *printer, history bool, events int, logger *slog.Logger) {
	if !history {
		changed, err := svc.RefreshWip()
		if err != nil {
			logger.Error("refresh local changes", slog.Any("error", err))
			return
		}
		logger.Debug("local changes refreshed", slog.Int("events", events), slog.Bool("changed", changed))
		if !changed {
			return
		}
		p.printSeparator("local changes")
		p.printGraph(svc.Cache())
		return
	}
	stats, err := svc.Load(ctx)
	if err != nil {
		logger.Error("reload", slog.Any("error", err))
		return
	}
	logger.Info("history reloaded", append(loadAttrs(stats), slog.Int("events", events))...)
	p.printSeparator("reloaded")
	p.printGraph(svc.Cache())
}

// watchPaths lists the directories to watch: the work tree and its .git
// directory, or the capture directory and its diff directory.
func watchPaths(root string) []string {
	if root == "" {
		return nil
	}
	paths := []string{root}
	for _, sub := range []string{".git", gitbackend.CaptureDiffDir, filepath.Join(".git", "refs", "heads")} {
		p := filepath.Join(root, sub)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}
	return paths
}

// worktreeInputs only feed the local changes row.
var worktreeInputs = []string{
	gitbackend.CaptureWorktree,
	gitbackend.CaptureIndex,
	gitbackend.CaptureStatus,
	filepath.Join(".git", "index"),
}

// touchesHistory reports whether a change to name can alter commits or
// refs rather than only local changes.
func touchesHistory(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	if slices.Contains(worktreeInputs, rel) {
		return false
	}
	top, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	switch top {
	case ".git", gitbackend.CaptureDiffDir, gitbackend.CaptureLog, gitbackend.CaptureRefs,
		gitbackend.CaptureHead, gitbackend.CaptureVersion:
		return true
	}
	return false
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc" || ext == ".swp"
}
