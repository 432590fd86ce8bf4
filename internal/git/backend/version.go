package backend

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Oldest git able to produce every capture file (porcelain v2 status and
// "%aI" dates in the log format).
const defaultMinGitVersion = "2.23.0"

// ParseGitVersion extracts the version from "git --version" style output.
func ParseGitVersion(out string) (*semver.Version, bool) {
	s := strings.TrimSpace(out)
	if s == "" {
		return nil, false
	}
	// Common formats:
	// - "git version 2.44.0"
	// - "git version 2.39.3 (Apple Git-146)"
	// - "git version 2.39.3.windows.1"
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return nil, false
	}
	s = s[start:]
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return nil, false
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return nil, false
	}
	return v, true
}

// CheckProducerVersion reports an error when out does not name a git at least
// as new as minVersion. An empty minVersion means defaultMinGitVersion.
func CheckProducerVersion(out, minVersion string) error {
	if minVersion == "" {
		minVersion = defaultMinGitVersion
	}
	c, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum git version %q: %w", minVersion, err)
	}
	got, ok := ParseGitVersion(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if !c.Check(got) {
		return fmt.Errorf("git %s is too old; capture requires git >= %s", got, minVersion)
	}
	return nil
}
