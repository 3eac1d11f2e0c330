package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rescale/navlist/internal/config"
)

// execute runs the full command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	AddCommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// TestConfigCmd tests the config command group
func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	expectedSubs := []string{"init", "show", "path"}
	subcommands := cmd.Commands()
	if len(subcommands) != len(expectedSubs) {
		t.Errorf("Expected %d subcommands, got %d", len(expectedSubs), len(subcommands))
	}

	foundSubs := make(map[string]bool)
	for _, sub := range subcommands {
		foundSubs[sub.Name()] = true
		if sub.Short == "" {
			t.Errorf("Subcommand '%s' has no short description", sub.Name())
		}
		if sub.RunE == nil {
			t.Errorf("Subcommand '%s' has no RunE", sub.Name())
		}
	}
	for _, expected := range expectedSubs {
		if !foundSubs[expected] {
			t.Errorf("Subcommand '%s' not found", expected)
		}
	}
}

// TestConfigInit tests that init writes a loadable file and respects --force
func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "navlist.conf")

	out, err := execute(t, "--config", path, "config", "init", "--compact")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Configuration saved to: "+path) {
		t.Errorf("unexpected output: %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Layout.CompactMyFiles {
		t.Error("--compact not persisted")
	}

	// A second init without --force leaves the file alone.
	out, err = execute(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("second config init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected existing-file notice, got %q", out)
	}
	if cfg, _ := config.Load(path); !cfg.Layout.CompactMyFiles {
		t.Error("config overwritten without --force")
	}

	if _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}
	if cfg, _ := config.Load(path); cfg.Layout.CompactMyFiles {
		t.Error("--force did not rewrite defaults")
	}
}

// TestConfigShow tests show against a missing file
func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navlist.conf")

	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"My files label:     My files", "Max concurrent: 4", "file does not exist"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestConfigShow_Invalid tests that an invalid file is reported
func TestConfigShow_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navlist.conf")
	if err := os.WriteFile(path, []byte("[resolver]\nmax_concurrent = 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "config", "show"); err == nil {
		t.Error("expected error for max_concurrent = 0")
	}
}

// TestConfigPath tests the config path command
func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navlist.conf")

	out, err := execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.HasPrefix(out, path+"\n") {
		t.Errorf("expected path first, got %q", out)
	}
}
