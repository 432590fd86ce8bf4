package backend

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCaptureFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestOpenCapture_Missing(t *testing.T) {
	t.Parallel()

	_, err := OpenCapture(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNoCapture) {
		t.Fatalf("expected ErrNoCapture, got %v", err)
	}
}

func TestOpenCapture_NotDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCaptureFile(t, dir, "file", "x")
	if _, err := OpenCapture(filepath.Join(dir, "file")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCapture_EmptyDirectory(t *testing.T) {
	t.Parallel()

	b, err := OpenCapture(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	if _, _, ok, err := b.HeadState(); ok || err != nil {
		t.Fatalf("HeadState ok=%v err=%v, want no head", ok, err)
	}
	refs, err := b.ListRefs()
	if err != nil || len(refs) != 0 {
		t.Fatalf("ListRefs = %v, %v", refs, err)
	}
	s, err := b.StartLogStream()
	if err != nil {
		t.Fatalf("StartLogStream: %v", err)
	}
	defer s.Close()
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	changes, err := b.LocalChangesStatus()
	if err != nil || changes.HasStaged || changes.HasWorktree {
		t.Fatalf("LocalChangesStatus = %+v, %v", changes, err)
	}
}

func TestCapture_ReadsFiles(t *testing.T) {
	t.Parallel()

	head := strings.Repeat("1", 40)
	dir := t.TempDir()
	writeCaptureFile(t, dir, CaptureHead, head+"\nmain\n")
	writeCaptureFile(t, dir, CaptureRefs, head+" refs/heads/main\n")
	writeCaptureFile(t, dir, CaptureVersion, "git version 2.44.0\n")
	writeCaptureFile(t, dir, filepath.Join(CaptureDiffDir, head), ":100644 100644 a b M\tREADME\n")
	writeCaptureFile(t, dir, CaptureWorktree, ":100644 100644 a 0000000 M\tmain.go\n")
	writeCaptureFile(t, dir, CaptureIndex, ":100644 100644 a b M\tgo.mod\n")
	writeCaptureFile(t, dir, CaptureStatus, "1 MM N... 100644 100644 100644 a b main.go\n? scratch.txt\n")
	writeCaptureFile(t, dir, CaptureLog, head+"\n\nA\na@x\n2024-01-02T03:04:05Z\nC\nc@x\n2024-01-02T03:04:05Z\ninit\x00")

	b, err := OpenCapture(dir)
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	if b.RepoPath() == "" {
		t.Fatal("expected repo path")
	}

	hash, name, ok, err := b.HeadState()
	if err != nil || !ok || hash != head || name != "main" {
		t.Fatalf("HeadState = %q %q %v %v", hash, name, ok, err)
	}
	refs, err := b.ListRefs()
	if err != nil || len(refs) != 1 || refs[0].Name != "main" {
		t.Fatalf("ListRefs = %+v, %v", refs, err)
	}
	diff, err := b.CommitDiffText(strings.ToUpper(head))
	if err != nil || !strings.Contains(diff, "README") {
		t.Fatalf("CommitDiffText = %q, %v", diff, err)
	}
	if _, err := b.CommitDiffText("../HEAD"); err == nil {
		t.Fatal("expected invalid commit id error")
	}
	wt, err := b.WorktreeDiffText(false)
	if err != nil || !strings.Contains(wt, "main.go") {
		t.Fatalf("WorktreeDiffText(false) = %q, %v", wt, err)
	}
	idx, err := b.WorktreeDiffText(true)
	if err != nil || !strings.Contains(idx, "go.mod") {
		t.Fatalf("WorktreeDiffText(true) = %q, %v", idx, err)
	}
	changes, err := b.LocalChangesStatus()
	if err != nil || !changes.HasStaged || !changes.HasWorktree || len(changes.Untracked) != 1 {
		t.Fatalf("LocalChangesStatus = %+v, %v", changes, err)
	}
	version, err := b.ProducerVersion()
	if err != nil || version != "git version 2.44.0" {
		t.Fatalf("ProducerVersion = %q, %v", version, err)
	}

	s, err := b.StartLogStream()
	if err != nil {
		t.Fatalf("StartLogStream: %v", err)
	}
	commit, err := s.Next()
	if err != nil || commit.Hash != head || commit.Message != "init" {
		t.Fatalf("Next = %+v, %v", commit, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCapture_DetachedHeadDefaultsName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCaptureFile(t, dir, CaptureHead, strings.Repeat("2", 40)+"\n")
	b, err := OpenCapture(dir)
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	_, name, ok, err := b.HeadState()
	if err != nil || !ok || name != "HEAD" {
		t.Fatalf("HeadState name=%q ok=%v err=%v", name, ok, err)
	}
}
