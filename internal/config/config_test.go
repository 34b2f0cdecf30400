package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, time.Duration(0), cfg.ScreensaveTimeout())
	assert.Equal(t, 400*time.Millisecond, cfg.TickInterval)
}

func TestParseOverlaysFile(t *testing.T) {
	cfg := Default()
	err := Parse([]byte(`
match: Living Room
width: 20
screensave: 30
tick_interval: 250ms
log:
  level: debug
  file: /var/log/upnp-display.log
`), cfg)
	require.NoError(t, err)

	assert.Equal(t, "Living Room", cfg.Match)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 30*time.Second, cfg.ScreensaveTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "/var/log/upnp-display.log", cfg.Log.File)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.DiscoveryInterval)
	assert.Equal(t, 3, cfg.Log.MaxBackups)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseInvalidYAML(t *testing.T) {
	err := Parse([]byte("width: [1, 2"), Default())
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match: uuid:1234\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uuid:1234", cfg.Match)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("UPNP_DISPLAY_MATCH", "Kitchen")
	t.Setenv("UPNP_DISPLAY_WIDTH", "24")
	t.Setenv("UPNP_DISPLAY_TICK_INTERVAL", "1s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", cfg.Match)
	assert.Equal(t, 24, cfg.Width)
	assert.Equal(t, time.Second, cfg.TickInterval)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("UPNP_DISPLAY_WIDTH", "wide")

	_, err := Load("")
	assert.ErrorContains(t, err, "UPNP_DISPLAY_WIDTH")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"MinWidth", func(c *Config) { c.Width = 8 }, true},
		{"TooNarrow", func(c *Config) { c.Width = 7 }, false},
		{"ZeroTick", func(c *Config) { c.TickInterval = 0 }, false},
		{"ZeroDiscovery", func(c *Config) { c.DiscoveryInterval = 0 }, false},
		{"ZeroMissingRounds", func(c *Config) { c.MissingRounds = 0 }, false},
		{"BadLogLevel", func(c *Config) { c.Log.Level = "loud" }, false},
		{"ScreensaveDisabled", func(c *Config) { c.Screensave = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
