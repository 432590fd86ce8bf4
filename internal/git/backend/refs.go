package backend

import (
	"fmt"
	"strings"
)

// parseRefsFromShowRef decodes "git show-ref --dereference" output. Annotated
// tags resolve to the commit they peel to.
func parseRefsFromShowRef(out string) ([]Ref, error) {
	type refEntry struct {
		hash string
		ref  string
	}

	peeledByTagRef := map[string]string{}
	var entries []refEntry

	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unexpected show-ref output line: %q", rawLine)
		}
		hash, refName := parts[0], parts[1]
		if base, ok := strings.CutSuffix(refName, "^{}"); ok {
			if base != "" {
				peeledByTagRef[base] = hash
			}
			continue
		}
		entries = append(entries, refEntry{hash: hash, ref: refName})
	}

	var refs []Ref
	for _, entry := range entries {
		kind, short := classifyRef(entry.ref)
		if short == "" {
			continue
		}
		hash := entry.hash
		if kind == RefKindTag {
			if peeled, ok := peeledByTagRef[entry.ref]; ok && peeled != "" {
				hash = peeled
			}
		}
		refs = append(refs, Ref{Hash: hash, Kind: kind, Name: short})
	}
	return refs, nil
}

func classifyRef(ref string) (RefKind, string) {
	switch {
	case strings.HasPrefix(ref, "refs/tags/"):
		return RefKindTag, strings.TrimPrefix(ref, "refs/tags/")
	case strings.HasPrefix(ref, "refs/heads/"):
		return RefKindBranch, strings.TrimPrefix(ref, "refs/heads/")
	case strings.HasPrefix(ref, "refs/remotes/"):
		return RefKindRemoteBranch, strings.TrimPrefix(ref, "refs/remotes/")
	case strings.HasPrefix(ref, "refs/patches/"):
		return RefKindPatch, strings.TrimPrefix(ref, "refs/patches/")
	case strings.HasPrefix(ref, "refs/"):
		return RefKindOther, strings.TrimPrefix(ref, "refs/")
	default:
		return RefKindOther, ""
	}
}
