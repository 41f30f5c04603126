// Package paths normalizes the working directories shells are
// launched in.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// FallbackDir is used when no usable directory can be resolved.
const FallbackDir = "/tmp"

// ExpandWorkingDir resolves a profile working directory to an absolute
// path a shell can be launched in. Empty input resolves to the user's
// home directory, a leading "~" is expanded, and relative paths are
// anchored at home. Unresolvable input falls back to FallbackDir.
func ExpandWorkingDir(dir string) string {
	home := os.Getenv("HOME")

	switch {
	case dir == "":
		dir = home
	case dir == "~":
		dir = home
	case strings.HasPrefix(dir, "~/"):
		if home != "" {
			dir = filepath.Join(home, dir[2:])
		}
	case !filepath.IsAbs(dir):
		if home != "" {
			dir = filepath.Join(home, dir)
		}
	}

	if dir == "" {
		return FallbackDir
	}
	return filepath.Clean(dir)
}

// EnsureDir returns dir when it exists and is a directory, otherwise
// FallbackDir. Shells refuse to start in a missing cwd; falling back
// keeps the session usable.
func EnsureDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return FallbackDir
	}
	return dir
}
