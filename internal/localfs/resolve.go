package localfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath turns a mount path into an absolute path. A leading ~ expands to
// the home directory and symlinks in the existing part of the path are
// resolved; components that do not exist yet are appended unchanged.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	// Walk up to the deepest existing ancestor and resolve that instead.
	existing := abs
	var missing []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		resolved = existing
	}
	return filepath.Join(append([]string{resolved}, missing...)...), nil
}
