// Package config handles configuration loading and validation for imesync.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/imesync/
//   - Linux:   $XDG_CONFIG_HOME/imesync/ or ~/.config/imesync/
//   - Windows: %APPDATA%\imesync\
//
// Falls back to ~/.imesync if platform detection fails.
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "imesync")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "imesync")
		}
		return fallbackDir()
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "imesync")
		}
		return filepath.Join(homeDir(), ".config", "imesync")
	default:
		return fallbackDir()
	}
}

// PlatformLogDir returns the platform-specific log directory.
//
// Platform paths:
//   - macOS:   ~/Library/Logs/imesync/
//   - Linux:   $XDG_STATE_HOME/imesync/ or ~/.local/state/imesync/
//   - Windows: %LOCALAPPDATA%\imesync\logs\
func PlatformLogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", "imesync")
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "imesync", "logs")
		}
		return filepath.Join(fallbackDir(), "logs")
	case "linux":
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, "imesync")
		}
		return filepath.Join(homeDir(), ".local", "state", "imesync")
	default:
		return filepath.Join(fallbackDir(), "logs")
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}

func fallbackDir() string {
	return filepath.Join(homeDir(), ".imesync")
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{
		"toml",
		"json",
		"yaml",
		"yml",
	}
}

// FindConfigFile searches for a config file in standard locations.
// Returns the path to the first found config file, or empty string if none found.
func FindConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, ext := range SupportedConfigFormats() {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
