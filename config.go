package pathtrace

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config carries the render-session settings. Zero values are replaced with
// defaults by Normalize, so a partially filled TOML file (or an empty one)
// yields a runnable configuration.
type Config struct {
	// Width and Height are the output resolution in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// SceneSeed drives the deterministic scene generator.
	SceneSeed uint64 `toml:"scene_seed"`

	// Frames caps how many ticks a headless session runs. 0 means the
	// caller decides when to stop.
	Frames int `toml:"frames"`

	// LogLevel is one of "debug", "info", "warn", "error". Empty disables
	// logging entirely.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the stock 720p configuration.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		SceneSeed: 1,
	}
}

// Normalize fills zero-valued fields with defaults and validates the rest.
func (c *Config) Normalize() error {
	if c.Width == 0 {
		c.Width = 1280
	}
	if c.Height == 0 {
		c.Height = 720
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("pathtrace: invalid output size: %dx%d", c.Width, c.Height)
	}
	if c.SceneSeed == 0 {
		c.SceneSeed = 1
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("pathtrace: unknown log level %q", c.LogLevel)
	}
	return nil
}

// LoadConfig reads a TOML configuration file and normalizes it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("pathtrace: read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("pathtrace: decode config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
