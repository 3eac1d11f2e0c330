package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rescale/navlist/internal/constants"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Layout.CompactMyFiles {
		t.Errorf("Expected CompactMyFiles=false, got %v", cfg.Layout.CompactMyFiles)
	}
	if cfg.Layout.MyFilesLabel != constants.MyFilesLabel {
		t.Errorf("Expected MyFilesLabel=%q, got %q", constants.MyFilesLabel, cfg.Layout.MyFilesLabel)
	}
	if cfg.Layout.ZipProviderID != constants.ZipProviderID {
		t.Errorf("Expected ZipProviderID=%q, got %q", constants.ZipProviderID, cfg.Layout.ZipProviderID)
	}
	if cfg.Resolver.MaxConcurrent != constants.DefaultResolverConcurrency {
		t.Errorf("Expected MaxConcurrent=%d, got %d", constants.DefaultResolverConcurrency, cfg.Resolver.MaxConcurrent)
	}
	if cfg.ResolveTimeout() != constants.DefaultResolveTimeout {
		t.Errorf("Expected ResolveTimeout=%v, got %v", constants.DefaultResolveTimeout, cfg.ResolveTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfigLoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "navlist.conf")

	cfg := NewConfig()
	cfg.Layout.CompactMyFiles = true
	cfg.Layout.MyFilesLabel = "Local"
	cfg.Layout.RemovableFallbackLabel = "USB disk"
	cfg.Resolver.MaxConcurrent = 8
	cfg.Resolver.TimeoutSeconds = 10
	cfg.Logging.Level = "debug"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.Layout.CompactMyFiles {
		t.Error("CompactMyFiles mismatch")
	}
	if loaded.Layout.MyFilesLabel != "Local" {
		t.Errorf("MyFilesLabel = %q, want %q", loaded.Layout.MyFilesLabel, "Local")
	}
	if loaded.RemovableLabel() != "USB disk" {
		t.Errorf("RemovableLabel() = %q, want %q", loaded.RemovableLabel(), "USB disk")
	}
	if loaded.Resolver.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", loaded.Resolver.MaxConcurrent)
	}
	if loaded.ResolveTimeout() != 10*time.Second {
		t.Errorf("ResolveTimeout = %v, want 10s", loaded.ResolveTimeout())
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Layout.MyFilesLabel != constants.MyFilesLabel {
		t.Errorf("expected defaults, got %+v", cfg.Layout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navlist.conf")
	content := "[resolver]\nmax_concurrent = 99\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidResolverLimit) {
		t.Errorf("Load error = %v, want ErrInvalidResolverLimit", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty label", func(c *Config) { c.Layout.MyFilesLabel = "  " }, ErrEmptyMyFilesLabel},
		{"zero concurrency", func(c *Config) { c.Resolver.MaxConcurrent = 0 }, ErrInvalidResolverLimit},
		{"zero timeout", func(c *Config) { c.Resolver.TimeoutSeconds = 0 }, ErrInvalidResolverTimeout},
		{"huge timeout", func(c *Config) { c.Resolver.TimeoutSeconds = 3600 }, ErrInvalidResolverTimeout},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemovableLabelFallback(t *testing.T) {
	cfg := NewConfig()
	cfg.Layout.RemovableFallbackLabel = ""
	if cfg.RemovableLabel() != constants.RemovableFallbackLabel {
		t.Errorf("RemovableLabel() = %q, want %q", cfg.RemovableLabel(), constants.RemovableFallbackLabel)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no config dir available: %v", err)
	}
	if filepath.Base(path) != constants.ConfigFileName {
		t.Errorf("DefaultConfigPath() = %q, want file %q", path, constants.ConfigFileName)
	}
}
