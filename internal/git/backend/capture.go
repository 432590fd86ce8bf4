package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoCapture is returned when the capture directory does not exist.
var ErrNoCapture = errors.New("capture directory not found")

// Names of the files inside a capture directory.
const (
	CaptureHead     = "HEAD"
	CaptureLog      = "log"
	CaptureRefs     = "refs"
	CaptureDiffDir  = "diff"
	CaptureWorktree = "worktree.diff"
	CaptureIndex    = "index.diff"
	CaptureStatus   = "status"
	CaptureVersion  = "version"
)

type capture struct {
	path string
}

// OpenCapture opens a directory holding captured git output. Files that are
// absent are read as empty output.
func OpenCapture(dir string) (Backend, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open capture %s: %w", abs, ErrNoCapture)
		}
		return nil, fmt.Errorf("open capture: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open capture %s: not a directory", abs)
	}
	return &capture{path: abs}, nil
}

func (c *capture) RepoPath() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *capture) readOptional(name string) (string, error) {
	if c == nil || c.path == "" {
		return "", fmt.Errorf("capture directory not set")
	}
	data, err := os.ReadFile(filepath.Join(c.path, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func (c *capture) StartLogStream() (LogStream, error) {
	if c == nil || c.path == "" {
		return nil, fmt.Errorf("capture directory not set")
	}
	f, err := os.Open(filepath.Join(c.path, CaptureLog))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLogStream(strings.NewReader("")), nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	return NewLogStream(f), nil
}

func (c *capture) HeadState() (hash string, headName string, ok bool, err error) {
	out, err := c.readOptional(CaptureHead)
	if err != nil {
		return "", "", false, err
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	hash = strings.TrimSpace(lines[0])
	if hash == "" {
		return "", "", false, nil
	}
	headName = "HEAD"
	if len(lines) > 1 {
		if name := strings.TrimSpace(lines[1]); name != "" {
			headName = name
		}
	}
	return hash, headName, true, nil
}

func (c *capture) ListRefs() ([]Ref, error) {
	out, err := c.readOptional(CaptureRefs)
	if err != nil {
		return nil, err
	}
	return parseRefsFromShowRef(out)
}

func (c *capture) CommitDiffText(commitHash string) (string, error) {
	commitHash = strings.ToLower(strings.TrimSpace(commitHash))
	if commitHash == "" {
		return "", fmt.Errorf("commit not specified")
	}
	if !plumbing.IsHash(commitHash) {
		return "", fmt.Errorf("invalid commit id %q", commitHash)
	}
	return c.readOptional(filepath.Join(CaptureDiffDir, commitHash))
}

func (c *capture) WorktreeDiffText(staged bool) (string, error) {
	if staged {
		return c.readOptional(CaptureIndex)
	}
	return c.readOptional(CaptureWorktree)
}

func (c *capture) LocalChangesStatus() (LocalChanges, error) {
	var res LocalChanges
	out, err := c.readOptional(CaptureStatus)
	if err != nil {
		return res, err
	}
	res, err = parseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return res, fmt.Errorf("parse git status: %w", err)
	}
	return res, nil
}

func (c *capture) ProducerVersion() (string, error) {
	out, err := c.readOptional(CaptureVersion)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
