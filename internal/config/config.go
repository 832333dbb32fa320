// Package config handles configuration loading, validation, and management for imesync.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"imesync/internal/ime"
	"imesync/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete imesync configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// IME configuration for the platform adapter.
	IME IMEConfig `toml:"ime" json:"ime" yaml:"ime"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// mu protects concurrent access to the config.
	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// IMEConfig holds IME synchronization settings.
type IMEConfig struct {
	// Enabled turns synchronization on. When false the editor never touches
	// the OS input method.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// FallbackInputSource is the keyboard layout selected on macOS while
	// the editor is in a non-inserting mode.
	FallbackInputSource string `toml:"fallback_input_source" json:"fallback_input_source" yaml:"fallback_input_source"`

	// LinuxServices lists the D-Bus input method services that may be used.
	// IBus is always probed before Fcitx5.
	LinuxServices []string `toml:"linux_services" json:"linux_services" yaml:"linux_services"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text, json or auto.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file used by the file and both outputs.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the age after which rotated files are removed.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		IME: IMEConfig{
			Enabled:             true,
			FallbackInputSource: ime.DefaultFallbackInputSource,
			LinuxServices:       []string{ime.ServiceIBus, ime.ServiceFcitx5},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "auto",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "imesync.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LanguagesPath returns the default user language table path.
func LanguagesPath() string {
	return filepath.Join(ConfigDir(), "languages.toml")
}

// ConfigDir returns the imesync configuration directory.
// IMESYNC_CONFIG_DIR overrides the platform default.
func ConfigDir() string {
	if envDir := os.Getenv("IMESYNC_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	return PlatformConfigDir()
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with IMESYNC_.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("IMESYNC_DISABLED"); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil {
			c.IME.Enabled = !disabled
		}
	}
	if v := os.Getenv("IMESYNC_FALLBACK_INPUT_SOURCE"); v != "" {
		c.IME.FallbackInputSource = v
	}

	if v := os.Getenv("IMESYNC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IMESYNC_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("IMESYNC_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Config{
		Version: c.Version,
		IME:     c.IME,
		Logging: c.Logging,
	}
	clone.IME.LinuxServices = append([]string{}, c.IME.LinuxServices...)
	return clone
}

// IMEOptions converts the IME section into adapter settings.
func (c *Config) IMEOptions() ime.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ime.Config{
		Disabled:            !c.IME.Enabled,
		FallbackInputSource: c.IME.FallbackInputSource,
		Services:            slices.Clone(c.IME.LinuxServices),
	}
}

// LoggingOptions converts the logging section into a logger configuration.
// Values are expected to have passed validation; unknown ones fall back to
// the logging defaults.
func (c *Config) LoggingOptions() *logging.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		lc.Level = level
	}
	if format, err := logging.ParseFormat(c.Logging.Format); err == nil {
		lc.Format = format
	}
	if c.Logging.Output != "" {
		lc.Output = c.Logging.Output
	}
	if c.Logging.FilePath != "" {
		lc.FilePath = c.Logging.FilePath
	}
	if c.Logging.MaxSizeMB > 0 {
		lc.MaxSize = int64(c.Logging.MaxSizeMB)
	}
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAge = c.Logging.MaxAgeDays
	lc.Compress = c.Logging.Compress
	return lc
}
