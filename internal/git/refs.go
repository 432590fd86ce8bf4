package git

import (
	"fmt"
	"slices"
	"strings"

	gitbackend "github.com/thiagokokada/gitk-graph/internal/git/backend"
)

// RefType classifies the names attached to a commit.
type RefType uint8

const (
	RefTag RefType = 1 << iota
	RefBranch
	RefRemoteBranch
	RefCurrentBranch
	RefOther
	RefApplied
	RefUnapplied

	RefAny RefType = RefTag | RefBranch | RefRemoteBranch | RefCurrentBranch | RefOther | RefApplied | RefUnapplied
)

// Reference collects every name pointing at one commit.
type Reference struct {
	Type           RefType
	Tags           []string
	Branches       []string
	RemoteBranches []string
	Refs           []string
	// Patch is the stacked-git patch name, set with RefApplied or RefUnapplied.
	Patch string
	// Head is set on the commit HEAD resolves to.
	Head          bool
	CurrentBranch string
}

func (r Reference) IsValid() bool { return r.Type != 0 || r.Head }

// Labels renders decorations in "git log --decorate" style.
func (r Reference) Labels() []string {
	var labels []string
	if r.Head {
		if r.CurrentBranch != "" {
			labels = append(labels, fmt.Sprintf("HEAD -> %s", r.CurrentBranch))
		} else {
			labels = append(labels, "HEAD")
		}
	}
	for _, b := range r.Branches {
		if r.Head && b == r.CurrentBranch {
			continue
		}
		labels = append(labels, b)
	}
	labels = append(labels, r.RemoteBranches...)
	for _, t := range r.Tags {
		labels = append(labels, fmt.Sprintf("tag: %s", t))
	}
	if r.Patch != "" {
		labels = append(labels, fmt.Sprintf("patch: %s", r.Patch))
	}
	labels = append(labels, r.Refs...)
	return labels
}

func (r Reference) clone() Reference {
	r.Tags = slices.Clone(r.Tags)
	r.Branches = slices.Clone(r.Branches)
	r.RemoteBranches = slices.Clone(r.RemoteBranches)
	r.Refs = slices.Clone(r.Refs)
	return r
}

// buildReferences groups backend refs by commit. Entries with malformed
// hashes are returned in skipped.
func buildReferences(refs []gitbackend.Ref, headHash, headName string) (byHash map[Hash]Reference, skipped []string) {
	byHash = make(map[Hash]Reference)
	for _, ref := range refs {
		if ref.Name == "" {
			continue
		}
		if ref.Kind == gitbackend.RefKindRemoteBranch && strings.HasSuffix(ref.Name, "/HEAD") {
			continue
		}
		h, ok := ParseHash(ref.Hash)
		if !ok {
			skipped = append(skipped, ref.Name)
			continue
		}
		r := byHash[h]
		switch ref.Kind {
		case gitbackend.RefKindTag:
			r.Type |= RefTag
			r.Tags = append(r.Tags, ref.Name)
		case gitbackend.RefKindBranch:
			r.Type |= RefBranch
			r.Branches = append(r.Branches, ref.Name)
		case gitbackend.RefKindRemoteBranch:
			r.Type |= RefRemoteBranch
			r.RemoteBranches = append(r.RemoteBranches, ref.Name)
		case gitbackend.RefKindPatch:
			r.Type |= RefApplied
			// refs/patches/<branch>/<patch>
			if _, name, found := strings.Cut(ref.Name, "/"); found {
				r.Patch = name
			} else {
				r.Patch = ref.Name
			}
		default:
			r.Type |= RefOther
			r.Refs = append(r.Refs, ref.Name)
		}
		byHash[h] = r
	}

	if h, ok := ParseHash(headHash); ok {
		r := byHash[h]
		r.Head = true
		if headName != "" && headName != "HEAD" {
			r.CurrentBranch = headName
			if slices.Contains(r.Branches, headName) {
				r.Type |= RefCurrentBranch
			}
		}
		byHash[h] = r
	}
	return byHash, skipped
}
