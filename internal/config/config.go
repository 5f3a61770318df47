// Package config holds the pitchinfo tool configuration: detector and
// Goertzel settings, framing, and log level, loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the top-level configuration document.
type Config struct {
	LogLevel string         `yaml:"log_level"` // debug, info, warn, error
	Detector DetectorConfig `yaml:"detector"`
	Frames   FrameConfig    `yaml:"frames"`
	Goertzel GoertzelConfig `yaml:"goertzel"`
}

// DetectorConfig mirrors the pitch.Detector options.
type DetectorConfig struct {
	WindowSize int     `yaml:"window_size"`
	MaxLag     int     `yaml:"max_lag"`
	Threshold  float64 `yaml:"threshold"`
	FFT        bool    `yaml:"fft"` // use the FFT-based NSDF
}

// FrameConfig controls how a long recording is cut into detector buffers.
type FrameConfig struct {
	Size int `yaml:"size"`
	Hop  int `yaml:"hop"` // 0 means Size (no overlap)
}

// GoertzelConfig holds block analysis settings.
type GoertzelConfig struct {
	Frequencies []float64 `yaml:"frequencies"`
	BlockSize   int       `yaml:"block_size"`
	AllBlocks   bool      `yaml:"all_blocks"` // analyze every block, not only the first half second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Detector: DetectorConfig{
			WindowSize: pitch.DefaultWindowSize,
			MaxLag:     pitch.DefaultMaxLag,
			Threshold:  pitch.DefaultThreshold,
		},
		Frames: FrameConfig{
			Size: 2048,
		},
		Goertzel: GoertzelConfig{
			Frequencies: []float64{440},
			BlockSize:   1024,
		},
	}
}

// Load reads path over the defaults, applies PITCHINFO_* environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("PITCHINFO_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
}

// Validate checks ranges that the detector and analyzer would otherwise
// reject at run time.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	d := c.Detector
	if d.WindowSize <= 0 {
		return fmt.Errorf("%w: detector.window_size must be > 0, got %d", ErrInvalid, d.WindowSize)
	}
	if d.MaxLag < 2 {
		return fmt.Errorf("%w: detector.max_lag must be >= 2, got %d", ErrInvalid, d.MaxLag)
	}
	if !(d.Threshold > 0 && d.Threshold <= 1) {
		return fmt.Errorf("%w: detector.threshold must be in (0, 1], got %v", ErrInvalid, d.Threshold)
	}

	if c.Frames.Size < d.WindowSize {
		return fmt.Errorf("%w: frames.size %d is shorter than detector.window_size %d",
			ErrInvalid, c.Frames.Size, d.WindowSize)
	}
	if c.Frames.Hop < 0 {
		return fmt.Errorf("%w: frames.hop must be >= 0, got %d", ErrInvalid, c.Frames.Hop)
	}

	if c.Goertzel.BlockSize <= 0 {
		return fmt.Errorf("%w: goertzel.block_size must be > 0, got %d", ErrInvalid, c.Goertzel.BlockSize)
	}
	for _, f := range c.Goertzel.Frequencies {
		if f < 0 {
			return fmt.Errorf("%w: goertzel.frequencies contains %v", ErrInvalid, f)
		}
	}

	return nil
}

// HopSize returns the effective frame hop.
func (f FrameConfig) HopSize() int {
	if f.Hop == 0 {
		return f.Size
	}
	return f.Hop
}

// DetectorOptions converts the detector section into pitch options.
func (c *Config) DetectorOptions(logger *slog.Logger) []pitch.Option {
	opts := []pitch.Option{
		pitch.WithWindowSize(c.Detector.WindowSize),
		pitch.WithMaxLag(c.Detector.MaxLag),
		pitch.WithThreshold(c.Detector.Threshold),
		pitch.WithLogger(logger),
	}
	if c.Detector.FFT {
		opts = append(opts, pitch.WithFFT())
	}
	return opts
}

// ParseLevel converts a case-insensitive level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, s)
	}
}
