// Package paths provides XDG-compliant path resolution for ausec.
//
// Resolution order:
// 1. AUSEC_HOME (portable root) → $AUSEC_HOME/{config,cache,state}
// 2. XDG env vars → $XDG_*_HOME/ausec
// 3. Platform defaults → ~/.config/ausec, ~/.cache/ausec, ~/.local/state/ausec
//    (%LOCALAPPDATA%\ausec on Windows)
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ausec"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("AUSEC_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if home := os.Getenv("AUSEC_HOME"); home != "" {
		return filepath.Join(home, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	homeDir, err := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return local
		}
		if err == nil {
			return filepath.Join(homeDir, "AppData", "Local")
		}
	}
	if err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("AUSEC_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the ausec configuration directory.
// Used for the global ausec.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// CacheDir returns the default download cache directory.
// Bundles are stored here flat, under their remote file names.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// StateDir returns the directory for state kept between runs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// GlobalConfigPath returns the path of the user-wide config file.
func GlobalConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "ausec.yml")
}
