package backend

import (
	"bufio"
	"io"
	"strings"
)

// parseStatusPorcelainV2 reads "git status --porcelain=v2" output.
func parseStatusPorcelainV2(r io.Reader) (LocalChanges, error) {
	var res LocalChanges
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		switch line[0] {
		case '1', '2', 'u':
			if len(line) < 4 {
				continue
			}
			stagedState := line[2]
			worktreeState := line[3]
			if stagedState != '.' {
				res.HasStaged = true
			}
			if worktreeState != '.' && worktreeState != '?' {
				res.HasWorktree = true
			}
			if line[0] == 'u' {
				// u XY sub m1 m2 m3 mW h1 h2 h3 path
				if fields := strings.SplitN(line, " ", 11); len(fields) == 11 {
					res.Conflicted = append(res.Conflicted, fields[10])
				}
			}
		case '?':
			if path := strings.TrimSpace(line[1:]); path != "" {
				res.Untracked = append(res.Untracked, path)
			}
		default:
			// '!' ignored, '#' headers.
		}
	}
	return res, scanner.Err()
}
