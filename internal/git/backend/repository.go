package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Open picks the reader for path: a capture directory when it holds a log
// capture, otherwise a git repository read in-process.
func Open(path string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(abs, CaptureLog)); err == nil {
		return OpenCapture(abs)
	}
	if repo, err := OpenRepository(abs); err == nil {
		return repo, nil
	}
	return OpenCapture(abs)
}

type repository struct {
	*gitlib.Repository
	path string
}

// OpenRepository reads history straight from the object database with
// go-git, producing the same text the capture files would hold.
func OpenRepository(path string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &repository{Repository: repo, path: abs}, nil
}

func (r *repository) RepoPath() string { return r.path }

func (r *repository) StartLogStream() (LogStream, error) {
	if _, err := r.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return NewLogStream(strings.NewReader("")), nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	iter, err := r.Log(&gitlib.LogOptions{All: true, Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	return &commitIterStream{iter: iter}, nil
}

type commitIterStream struct {
	iter object.CommitIter
}

func (s *commitIterStream) Next() (*Commit, error) {
	if s.iter == nil {
		return nil, io.EOF
	}
	c, err := s.iter.Next()
	if err != nil {
		return nil, err
	}
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	return &Commit{
		Hash:         c.Hash.String(),
		ParentHashes: parents,
		Author:       Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Author.When},
		Committer:    Signature{Name: c.Committer.Name, Email: c.Committer.Email, When: c.Committer.When},
		Message:      c.Message,
	}, nil
}

func (s *commitIterStream) Close() error {
	if s.iter != nil {
		s.iter.Close()
		s.iter = nil
	}
	return nil
}

func (r *repository) HeadState() (hash string, headName string, ok bool, err error) {
	ref, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	headName = "HEAD"
	if ref.Name().IsBranch() {
		headName = ref.Name().Short()
	}
	return ref.Hash().String(), headName, true, nil
}

func (r *repository) ListRefs() ([]Ref, error) {
	iter, err := r.References()
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		kind, short := classifyRef(ref.Name().String())
		if short == "" {
			return nil
		}
		hash := ref.Hash()
		if kind == RefKindTag {
			if peeled, ok := r.peelTagCommitHash(hash); ok {
				hash = peeled
			}
		}
		refs = append(refs, Ref{Hash: hash.String(), Kind: kind, Name: short})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *repository) peelTagCommitHash(hash plumbing.Hash) (plumbing.Hash, bool) {
	if hash == plumbing.ZeroHash {
		return plumbing.ZeroHash, false
	}
	// Lightweight tags point directly at a commit; annotated tags point at a tag object.
	if _, err := r.CommitObject(hash); err == nil {
		return hash, true
	}
	cur := hash
	for range 8 {
		tag, err := r.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}

// CommitDiffText renders "git diff-tree -r -m -C --raw" output: a header
// line per parent followed by that parent's changes. Only exact renames are
// detected.
func (r *repository) CommitDiffText(commitHash string) (string, error) {
	commitHash = strings.ToLower(strings.TrimSpace(commitHash))
	if !plumbing.IsHash(commitHash) {
		return "", fmt.Errorf("invalid commit id %q", commitHash)
	}
	commit, err := r.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return "", fmt.Errorf("read commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if commit.NumParents() == 0 {
		b.WriteString(commit.Hash.String() + "\n")
		if err := writeRawTreeDiff(&b, nil, tree); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	for i := range commit.NumParents() {
		parent, err := commit.Parent(i)
		if err != nil {
			return "", fmt.Errorf("read parent %d: %w", i+1, err)
		}
		parentTree, err := parent.Tree()
		if err != nil {
			return "", err
		}
		b.WriteString(commit.Hash.String() + "\n")
		if err := writeRawTreeDiff(&b, parentTree, tree); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeRawTreeDiff(b *strings.Builder, from, to *object.Tree) error {
	changes, err := object.DiffTreeWithOptions(context.Background(), from, to, &object.DiffTreeOptions{
		DetectRenames:    true,
		OnlyExactRenames: true,
	})
	if err != nil {
		return err
	}
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return err
		}
		fromEntry, toEntry := ch.From.TreeEntry, ch.To.TreeEntry
		switch {
		case action == merkletrie.Modify && ch.From.Name != ch.To.Name:
			writeRawLine(b, fromEntry.Mode, toEntry.Mode, fromEntry.Hash, toEntry.Hash, "R100", ch.From.Name, ch.To.Name)
		case action == merkletrie.Insert:
			writeRawLine(b, filemode.Empty, toEntry.Mode, plumbing.ZeroHash, toEntry.Hash, "A", ch.To.Name)
		case action == merkletrie.Delete:
			writeRawLine(b, fromEntry.Mode, filemode.Empty, fromEntry.Hash, plumbing.ZeroHash, "D", ch.From.Name)
		default:
			status := "M"
			if fromEntry.Mode != toEntry.Mode && (fromEntry.Mode == filemode.Symlink || toEntry.Mode == filemode.Symlink) {
				status = "T"
			}
			writeRawLine(b, fromEntry.Mode, toEntry.Mode, fromEntry.Hash, toEntry.Hash, status, ch.To.Name)
		}
	}
	return nil
}

func writeRawLine(b *strings.Builder, fromMode, toMode filemode.FileMode, fromHash, toHash plumbing.Hash, status string, paths ...string) {
	fmt.Fprintf(b, ":%06o %06o %s %s %s\t%s\n", uint32(fromMode), uint32(toMode), fromHash, toHash, status, strings.Join(paths, "\t"))
}

func (r *repository) worktreeStatus() (gitlib.Status, error) {
	wt, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	return wt.Status()
}

// WorktreeDiffText lists local changes in raw format from the worktree
// status; blob ids are not computed.
func (r *repository) WorktreeDiffText(staged bool) (string, error) {
	status, err := r.worktreeStatus()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return "", nil
		}
		return "", err
	}
	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		st := status[path]
		code := st.Worktree
		if staged {
			code = st.Staging
		}
		switch code {
		case gitlib.Unmodified, gitlib.Untracked:
			continue
		case gitlib.Renamed, gitlib.Copied:
			if st.Extra != "" {
				writeRawLine(&b, filemode.Regular, filemode.Regular, plumbing.ZeroHash, plumbing.ZeroHash, string(code)+"100", st.Extra, path)
				continue
			}
			writeRawLine(&b, filemode.Regular, filemode.Regular, plumbing.ZeroHash, plumbing.ZeroHash, "A", path)
		default:
			writeRawLine(&b, filemode.Regular, filemode.Regular, plumbing.ZeroHash, plumbing.ZeroHash, string(code), path)
		}
	}
	return b.String(), nil
}

func (r *repository) LocalChangesStatus() (LocalChanges, error) {
	var res LocalChanges
	status, err := r.worktreeStatus()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return res, nil
		}
		return res, err
	}
	for path, st := range status {
		if st.Worktree == gitlib.Untracked {
			res.Untracked = append(res.Untracked, path)
			continue
		}
		if st.Worktree == gitlib.UpdatedButUnmerged || st.Staging == gitlib.UpdatedButUnmerged {
			res.Conflicted = append(res.Conflicted, path)
		}
		if st.Worktree != gitlib.Unmodified {
			res.HasWorktree = true
		}
		if st.Staging != gitlib.Unmodified {
			res.HasStaged = true
		}
	}
	sort.Strings(res.Untracked)
	sort.Strings(res.Conflicted)
	return res, nil
}

// ProducerVersion is empty: no external git produced this data.
func (r *repository) ProducerVersion() (string, error) {
	return "", nil
}
