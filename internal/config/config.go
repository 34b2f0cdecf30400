package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinWidth is the narrowest supported display.
const MinWidth = 8

// Config is the complete runtime configuration.
type Config struct {
	// Match selects the renderer by friendly name or "uuid:..." id.
	// Empty attaches to the first renderer found.
	Match string `yaml:"match"`

	// Width is the display width in cells.
	Width int `yaml:"width"`

	// Screensave blanks the display after this many seconds without a
	// renderer event. Zero or negative disables it.
	Screensave int `yaml:"screensave"`

	// TickInterval is the display update cadence.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Listen is the address of the GENA event listener.
	Listen string `yaml:"listen"`

	// DiscoveryInterval is the time between SSDP searches.
	DiscoveryInterval time.Duration `yaml:"discovery_interval"`

	// MissingRounds is how many searches a renderer may miss before it
	// is dropped.
	MissingRounds int `yaml:"missing_rounds"`

	// Capture is the path of the protocol capture file. Empty disables
	// capture.
	Capture string `yaml:"capture"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level string `yaml:"level"`

	// File, if set, receives log output instead of stderr and is rotated.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Width:             16,
		Screensave:        -1,
		TickInterval:      400 * time.Millisecond,
		Listen:            ":0",
		DiscoveryInterval: 30 * time.Second,
		MissingRounds:     3,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path
// is not empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Keys absent from data keep their
// current value.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// applyEnv applies UPNP_DISPLAY_* overrides.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup("UPNP_DISPLAY_" + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup("UPNP_DISPLAY_" + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("UPNP_DISPLAY_%s: %w", name, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup("UPNP_DISPLAY_" + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("UPNP_DISPLAY_%s: %w", name, err)
		}
		*dst = d
		return nil
	}

	str("MATCH", &cfg.Match)
	str("LISTEN", &cfg.Listen)
	str("CAPTURE", &cfg.Capture)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)

	return errors.Join(
		num("WIDTH", &cfg.Width),
		num("SCREENSAVE", &cfg.Screensave),
		num("MISSING_ROUNDS", &cfg.MissingRounds),
		dur("TICK_INTERVAL", &cfg.TickInterval),
		dur("DISCOVERY_INTERVAL", &cfg.DiscoveryInterval),
	)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Width < MinWidth {
		errs = append(errs, fmt.Errorf("invalid width %d: must be at least %d", c.Width, MinWidth))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %v", c.TickInterval))
	}
	if c.DiscoveryInterval <= 0 {
		errs = append(errs, fmt.Errorf("discovery interval must be positive, got %v", c.DiscoveryInterval))
	}
	if c.MissingRounds <= 0 {
		errs = append(errs, fmt.Errorf("missing rounds must be positive, got %d", c.MissingRounds))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ScreensaveTimeout returns Screensave as a duration; 0 when disabled.
func (c *Config) ScreensaveTimeout() time.Duration {
	if c.Screensave <= 0 {
		return 0
	}
	return time.Duration(c.Screensave) * time.Second
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
