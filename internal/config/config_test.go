package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imesync/internal/ime"
	"imesync/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, Version, cfg.Version)
	assert.True(t, cfg.IME.Enabled)
	assert.Equal(t, ime.DefaultFallbackInputSource, cfg.IME.FallbackInputSource)
	assert.Equal(t, []string{ime.ServiceIBus, ime.ServiceFcitx5}, cfg.IME.LinuxServices)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMESYNC_CONFIG_DIR", dir)

	assert.Equal(t, dir, ConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), ConfigPath())
	assert.Equal(t, filepath.Join(dir, "languages.toml"), LanguagesPath())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().IME, cfg.IME)
}

func TestLoad_Formats(t *testing.T) {
	files := map[string]string{
		"config.toml": `
version = 1
[ime]
enabled = false
fallback_input_source = "com.apple.keylayout.ABC"
linux_services = ["fcitx5"]
[logging]
level = "debug"
`,
		"config.yaml": `
version: 1
ime:
  enabled: false
  fallback_input_source: com.apple.keylayout.ABC
  linux_services: [fcitx5]
logging:
  level: debug
`,
		"config.json": `{
  "version": 1,
  "ime": {
    "enabled": false,
    "fallback_input_source": "com.apple.keylayout.ABC",
    "linux_services": ["fcitx5"]
  },
  "logging": {"level": "debug"}
}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			cfg, err := Load(path)
			require.NoError(t, err)

			assert.False(t, cfg.IME.Enabled)
			assert.Equal(t, "com.apple.keylayout.ABC", cfg.IME.FallbackInputSource)
			assert.Equal(t, []string{ime.ServiceFcitx5}, cfg.IME.LinuxServices)
			assert.Equal(t, "debug", cfg.Logging.Level)
			// Unset keys keep their defaults.
			assert.Equal(t, "stderr", cfg.Logging.Output)
		})
	}
}

func TestLoad_AutoDetect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imesyncrc")
	require.NoError(t, os.WriteFile(path, []byte("[ime]\nenabled = false\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.IME.Enabled)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ime\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyServicesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ime]\nlinux_services = []\n"), 0600))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "ime.linux_services")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMESYNC_DISABLED", "true")
	t.Setenv("IMESYNC_FALLBACK_INPUT_SOURCE", "com.apple.keylayout.Dvorak")
	t.Setenv("IMESYNC_LOG_LEVEL", "warn")
	t.Setenv("IMESYNC_LOG_FORMAT", "json")
	t.Setenv("IMESYNC_LOG_PATH", "/tmp/imesync-test.log")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.False(t, cfg.IME.Enabled)
	assert.Equal(t, "com.apple.keylayout.Dvorak", cfg.IME.FallbackInputSource)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/imesync-test.log", cfg.Logging.FilePath)
}

func TestApplyEnvOverrides_IgnoresGarbageBool(t *testing.T) {
	t.Setenv("IMESYNC_DISABLED", "maybe")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.True(t, cfg.IME.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"bad version", func(c *Config) { c.Version = 99 }, []string{"version"}},
		{"empty fallback", func(c *Config) { c.IME.FallbackInputSource = "" }, []string{"ime.fallback_input_source"}},
		{"unknown service", func(c *Config) { c.IME.LinuxServices = []string{"ibus", "uim"} }, []string{"ime.linux_services[1]"}},
		{"empty services", func(c *Config) { c.IME.LinuxServices = []string{} }, []string{"ime.linux_services"}},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, []string{"logging.level"}},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, []string{"logging.format"}},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }, []string{"logging.output"}},
		{"file without path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, []string{"logging.file_path"}},
		{"negative retention", func(c *Config) {
			c.Logging.MaxBackups = -1
			c.Logging.MaxAgeDays = -1
		}, []string{"logging.max_backups", "logging.max_age_days"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var got []string
			for _, v := range verrs {
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.IME.LinuxServices[0] = "changed"
	clone.Logging.Level = "error"

	assert.Equal(t, ime.ServiceIBus, cfg.IME.LinuxServices[0])
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestIMEOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IME.Enabled = false
	cfg.IME.LinuxServices = []string{ime.ServiceFcitx5}

	opts := cfg.IMEOptions()
	assert.True(t, opts.Disabled)
	assert.Equal(t, ime.DefaultFallbackInputSource, opts.FallbackInputSource)
	assert.Equal(t, []string{ime.ServiceFcitx5}, opts.Services)
}

func TestLoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = "/var/tmp/imesync.log"
	cfg.Logging.MaxSizeMB = 5

	lc := cfg.LoggingOptions()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.Equal(t, "both", lc.Output)
	assert.Equal(t, "/var/tmp/imesync.log", lc.FilePath)
	assert.EqualValues(t, 5, lc.MaxSize)
	assert.Equal(t, cfg.Logging.MaxBackups, lc.MaxBackups)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, ext := range SupportedConfigFormats() {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config."+ext)

			cfg := DefaultConfig()
			cfg.IME.FallbackInputSource = "com.apple.keylayout.Colemak"
			cfg.Logging.Compress = false
			require.NoError(t, SaveConfig(cfg, path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.IME, loaded.IME)
			assert.Equal(t, cfg.Logging, loaded.Logging)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cfg.IME, again.IME)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMESYNC_CONFIG_DIR", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Empty(t, FindConfigFile())

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0600))
	assert.Equal(t, path, FindConfigFile())
}
