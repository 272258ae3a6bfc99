package version

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IsNewer reports whether latest is a newer release than current.
// Development builds are never considered outdated.
func IsNewer(current, latest string) bool {
	if IsDevelopment(current) {
		return false
	}

	cur := parseSemver(current)
	lat := parseSemver(latest)
	for i := range cur {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

// IsHomebrew reports whether the running binary lives under a Homebrew prefix.
func IsHomebrew() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return strings.Contains(exe, "/Cellar/") || strings.Contains(exe, "/homebrew/")
}

func parseSemver(v string) [3]int {
	v = strings.TrimPrefix(v, "v")
	if idx := strings.IndexAny(v, "-+"); idx >= 0 {
		v = v[:idx]
	}

	var out [3]int
	i := 0
	for part := range strings.SplitSeq(v, ".") {
		if i == len(out) {
			break
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		out[i] = n
		i++
	}
	return out
}
