// Package config provides configuration management for navlist.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/rescale/navlist/internal/constants"
)

// Config represents the navlist configuration file.
//
// Config file location:
//   - Windows: %APPDATA%\navlist\navlist.conf
//   - Unix: ~/.config/navlist/navlist.conf
//
// INI format:
//
//	[layout]
//	compact_my_files = false
//	my_files_label = My files
//	removable_fallback_label = External Drive
//	zip_provider_id = dmboannefpncccogfdikhmhpmdnddgoe
//
//	[resolver]
//	max_concurrent = 4
//	timeout_seconds = 5
//
//	[logging]
//	level = info
type Config struct {
	Layout   LayoutConfig
	Resolver ResolverConfig
	Logging  LoggingConfig
}

// LayoutConfig contains settings read by the layout compiler.
type LayoutConfig struct {
	// CompactMyFiles makes the Downloads volume back the "My files" group
	// instead of appearing as its first child.
	// Default: false
	CompactMyFiles bool `ini:"compact_my_files"`

	// MyFilesLabel is the label of the "My files" group.
	MyFilesLabel string `ini:"my_files_label"`

	// RemovableFallbackLabel labels partition groups without a drive label.
	RemovableFallbackLabel string `ini:"removable_fallback_label"`

	// ZipProviderID marks provided volumes that are really mounted zip archives.
	ZipProviderID string `ini:"zip_provider_id"`
}

// ResolverConfig contains display root resolution settings.
type ResolverConfig struct {
	// MaxConcurrent bounds parallel resolutions.
	// Minimum: 1, Maximum: 32, Default: 4
	MaxConcurrent int `ini:"max_concurrent"`

	// TimeoutSeconds is the per-volume resolution deadline.
	// Minimum: 1, Maximum: 120, Default: 5
	TimeoutSeconds int `ini:"timeout_seconds"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `ini:"level"`
}

// Config validation errors
var (
	ErrEmptyMyFilesLabel      = errors.New("my_files_label must not be empty")
	ErrInvalidResolverLimit   = fmt.Errorf("max_concurrent must be between %d and %d", constants.MinResolverConcurrency, constants.MaxResolverConcurrency)
	ErrInvalidResolverTimeout = fmt.Errorf("timeout_seconds must be between 1 and %d", int(constants.MaxResolveTimeout/time.Second))
	ErrInvalidLogLevel        = errors.New("level must be one of debug, info, warn, error")
)

var (
	defaultResolveTimeoutSecs = int(constants.DefaultResolveTimeout / time.Second)
	validLogLevels            = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Layout: LayoutConfig{
			CompactMyFiles:         false,
			MyFilesLabel:           constants.MyFilesLabel,
			RemovableFallbackLabel: constants.RemovableFallbackLabel,
			ZipProviderID:          constants.ZipProviderID,
		},
		Resolver: ResolverConfig{
			MaxConcurrent:  constants.DefaultResolverConcurrency,
			TimeoutSeconds: defaultResolveTimeoutSecs,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the INI file at path.
// If path is empty, uses the default path.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", constants.ConfigFileName, err)
	}

	layout := iniFile.Section("layout")
	cfg.Layout.CompactMyFiles = layout.Key("compact_my_files").MustBool(false)
	cfg.Layout.MyFilesLabel = layout.Key("my_files_label").MustString(constants.MyFilesLabel)
	cfg.Layout.RemovableFallbackLabel = layout.Key("removable_fallback_label").MustString(constants.RemovableFallbackLabel)
	cfg.Layout.ZipProviderID = layout.Key("zip_provider_id").MustString(constants.ZipProviderID)

	resolver := iniFile.Section("resolver")
	cfg.Resolver.MaxConcurrent = resolver.Key("max_concurrent").MustInt(constants.DefaultResolverConcurrency)
	cfg.Resolver.TimeoutSeconds = resolver.Key("timeout_seconds").MustInt(defaultResolveTimeoutSecs)

	logging := iniFile.Section("logging")
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(logging.Key("level").MustString("info")))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to the INI file at path.
// If path is empty, uses the default path.
// Creates parent directories if they don't exist.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	layout, err := iniFile.NewSection("layout")
	if err != nil {
		return fmt.Errorf("failed to create layout section: %w", err)
	}
	layout.Key("compact_my_files").SetValue(fmt.Sprintf("%t", cfg.Layout.CompactMyFiles))
	layout.Key("my_files_label").SetValue(cfg.Layout.MyFilesLabel)
	layout.Key("removable_fallback_label").SetValue(cfg.Layout.RemovableFallbackLabel)
	layout.Key("zip_provider_id").SetValue(cfg.Layout.ZipProviderID)

	resolver, err := iniFile.NewSection("resolver")
	if err != nil {
		return fmt.Errorf("failed to create resolver section: %w", err)
	}
	resolver.Key("max_concurrent").SetValue(fmt.Sprintf("%d", cfg.Resolver.MaxConcurrent))
	resolver.Key("timeout_seconds").SetValue(fmt.Sprintf("%d", cfg.Resolver.TimeoutSeconds))

	logging, err := iniFile.NewSection("logging")
	if err != nil {
		return fmt.Errorf("failed to create logging section: %w", err)
	}
	logging.Key("level").SetValue(cfg.Logging.Level)

	// Use temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Layout.MyFilesLabel) == "" {
		return ErrEmptyMyFilesLabel
	}
	if cfg.Resolver.MaxConcurrent < constants.MinResolverConcurrency || cfg.Resolver.MaxConcurrent > constants.MaxResolverConcurrency {
		return ErrInvalidResolverLimit
	}
	if cfg.Resolver.TimeoutSeconds < 1 || time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second > constants.MaxResolveTimeout {
		return ErrInvalidResolverTimeout
	}
	if !validLogLevels[cfg.Logging.Level] {
		return ErrInvalidLogLevel
	}
	return nil
}

// ResolveTimeout returns the resolver deadline as a duration.
func (cfg *Config) ResolveTimeout() time.Duration {
	return time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second
}

// RemovableLabel returns the fallback label, or the built-in default when unset.
func (cfg *Config) RemovableLabel() string {
	if strings.TrimSpace(cfg.Layout.RemovableFallbackLabel) == "" {
		return constants.RemovableFallbackLabel
	}
	return cfg.Layout.RemovableFallbackLabel
}
