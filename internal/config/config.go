// Package config handles renderer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Backend names accepted by graphics.backend.
const (
	BackendGL    = "gl"
	BackendTrace = "trace"
)

// Config holds all settings read once at startup.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Debug    DebugConfig    `yaml:"debug" toml:"debug"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// GraphicsConfig holds display and backend settings.
type GraphicsConfig struct {
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
	Backend    string `yaml:"backend" toml:"backend"`
}

// RenderConfig holds device-level limits and the device-reset retry policy.
type RenderConfig struct {
	ResetTimeout         Duration `yaml:"reset_timeout" toml:"reset_timeout"`
	ResetInitialInterval Duration `yaml:"reset_initial_interval" toml:"reset_initial_interval"`
	ResetMaxInterval     Duration `yaml:"reset_max_interval" toml:"reset_max_interval"`
	MaxPoolSize          int      `yaml:"max_pool_size" toml:"max_pool_size"` // 0 = index space limit
}

// DebugConfig holds developer toggles.
type DebugConfig struct {
	Overlay   bool `yaml:"overlay" toml:"overlay"`
	HotReload bool `yaml:"hot_reload" toml:"hot_reload"`
}

// AssetsConfig holds content locations.
type AssetsConfig struct {
	Root string `yaml:"root" toml:"root"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Backend:    BackendGL,
		},
		Render: RenderConfig{
			ResetTimeout:         Duration(5 * time.Second),
			ResetInitialInterval: Duration(10 * time.Millisecond),
			ResetMaxInterval:     Duration(500 * time.Millisecond),
		},
		Debug: DebugConfig{
			Overlay:   false,
			HotReload: false,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height)
	}
	switch c.Graphics.Backend {
	case BackendGL, BackendTrace:
	default:
		return fmt.Errorf("unknown graphics backend %q", c.Graphics.Backend)
	}
	if c.Render.ResetTimeout <= 0 {
		return fmt.Errorf("render.reset_timeout must be positive")
	}
	if c.Render.MaxPoolSize < 0 {
		return fmt.Errorf("render.max_pool_size must not be negative")
	}
	return nil
}

// Duration is a time.Duration that reads and writes as text ("5s", "250ms")
// in both YAML and TOML files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
