// Package localfs provides the local filesystem lookups navlist needs when it
// resolves the display root of a mounted volume.
package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrNotDirectory is returned by StatDir when the path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FileEntry represents a file or directory in the local filesystem.
type FileEntry struct {
	Path    string      // Full path to the file
	Name    string      // Base name of the file
	IsDir   bool        // True if this is a directory
	ModTime time.Time   // Last modification time
	Mode    fs.FileMode // File mode/permissions
}

// Stat returns the FileEntry for path. Symlinks are followed so that a
// mount point reached through a link reports the target directory.
func Stat(path string) (FileEntry, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return FileEntry{}, err
	}
	return FileEntry{
		Path:    clean,
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}, nil
}

// StatDir is Stat restricted to directories.
func StatDir(path string) (FileEntry, error) {
	entry, err := Stat(path)
	if err != nil {
		return FileEntry{}, err
	}
	if !entry.IsDir {
		return FileEntry{}, fmt.Errorf("%s: %w", entry.Path, ErrNotDirectory)
	}
	return entry, nil
}
