package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatDir(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("directory", func(t *testing.T) {
		entry, err := StatDir(tmpDir + string(os.PathSeparator))
		if err != nil {
			t.Fatalf("StatDir failed: %v", err)
		}
		if !entry.IsDir {
			t.Error("IsDir should be true")
		}
		if entry.Path != filepath.Clean(tmpDir) {
			t.Errorf("Path = %q, want %q", entry.Path, filepath.Clean(tmpDir))
		}
	})

	t.Run("regular file", func(t *testing.T) {
		_, err := StatDir(filePath)
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("StatDir(file) error = %v, want ErrNotDirectory", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := StatDir(filepath.Join(tmpDir, "missing"))
		if !os.IsNotExist(err) {
			t.Errorf("StatDir(missing) error = %v, want not-exist", err)
		}
	})
}

func TestStatFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "data.bin")
	if err := os.WriteFile(filePath, []byte("abc"), 0600); err != nil {
		t.Fatal(err)
	}

	entry, err := Stat(filePath)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if entry.Name != "data.bin" {
		t.Errorf("Name = %q, want data.bin", entry.Name)
	}
	if entry.IsDir {
		t.Error("IsDir should be false")
	}
}

func TestResolvePath(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(tmpDir, "target")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmpDir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"existing", target, target},
		{"symlink", link, target},
		{"missing under symlink", filepath.Join(link, "a", "b"), filepath.Join(target, "a", "b")},
		{"unclean", target + string(os.PathSeparator) + ".", target},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			if err != nil {
				t.Fatalf("ResolvePath(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolvePath_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	want, err := filepath.EvalSymlinks(home)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePath("~/missing")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(want, "missing") {
		t.Errorf("ResolvePath(~/missing) = %q, want %q", got, filepath.Join(want, "missing"))
	}
}
