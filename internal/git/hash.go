package git

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Hash identifies a commit.
type Hash = plumbing.Hash

// ZeroHash identifies the work-in-progress pseudo-commit and is never a real commit.
var ZeroHash = plumbing.ZeroHash

const hashHexLen = 40

// ParseHash parses a full hex commit id. Letter case is ignored.
func ParseHash(s string) (Hash, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != hashHexLen || !plumbing.IsHash(s) {
		return ZeroHash, false
	}
	return plumbing.NewHash(s), true
}

// parseHashes converts a parent list, dropping entries that are not full ids.
func parseHashes(ids []string) ([]Hash, []string) {
	if len(ids) == 0 {
		return nil, nil
	}
	hashes := make([]Hash, 0, len(ids))
	var bad []string
	for _, id := range ids {
		h, ok := ParseHash(id)
		if !ok {
			bad = append(bad, id)
			continue
		}
		hashes = append(hashes, h)
	}
	return hashes, bad
}

// ShortHash returns the abbreviated form used in listings.
func ShortHash(h Hash) string {
	return h.String()[:7]
}

func hashPrefixMatch(h Hash, prefix string) bool {
	return strings.HasPrefix(h.String(), prefix)
}
