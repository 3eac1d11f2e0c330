package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rescale/navlist/internal/constants"
)

// DefaultConfigPath returns the default path for navlist.conf.
//   - Windows: %APPDATA%\navlist\navlist.conf
//   - Unix: ~/.config/navlist/navlist.conf
func DefaultConfigPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE environment variable set")
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, constants.ConfigDirName)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			home, herr := os.UserHomeDir()
			if herr != nil {
				return "", fmt.Errorf("failed to get home directory: %w", herr)
			}
			dir = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(dir, constants.ConfigDirName)
	}

	return filepath.Join(configDir, constants.ConfigFileName), nil
}
