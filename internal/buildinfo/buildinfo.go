package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// Revision returns the abbreviated VCS revision, suffixed with "-dirty"
// for builds of a modified tree, or "" when not recorded.
func Revision() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	var rev string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// DependencyVersion returns the version of the module at path linked into
// the binary, or "" when it is not a dependency.
func DependencyVersion(path string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// Summary is the -version line: version, revision and the go-git release
// used for repository reading.
func Summary() string {
	parts := []string{Version()}
	if rev := Revision(); rev != "" {
		parts = append(parts, fmt.Sprintf("rev %s", rev))
	}
	if gogit := DependencyVersion("github.com/go-git/go-git/v5"); gogit != "" {
		parts = append(parts, fmt.Sprintf("go-git %s", gogit))
	}
	return strings.Join(parts, ", ")
}
