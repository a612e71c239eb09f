// Package config loads the YAML settings file: logging, export, preview and
// parameter presets.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"video-adjustment-tool/internal/core"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete tool configuration
type Config struct {
	Logging LoggingConfig     `yaml:"logging"`
	Export  ExportConfig      `yaml:"export"`
	Preview PreviewConfig     `yaml:"preview"`
	Presets map[string]Preset `yaml:"presets"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level      string `yaml:"level"`  // panic, fatal, error, warn, info, debug, trace
	Format     string `yaml:"format"` // json, text
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ExportConfig contains video export settings
type ExportConfig struct {
	FourCC  string `yaml:"fourcc"`
	Workers int    `yaml:"workers"` // 1 = sequential
}

// PreviewConfig contains live preview settings
type PreviewConfig struct {
	IntervalMS int     `yaml:"interval_ms"`
	Scale      float64 `yaml:"scale"`
}

// Preset holds slider positions keyed by field name. "cc" and "hue" are accepted
// as short names for color_correction and hue_shift.
type Preset map[string]int

var presetAliases = map[string]string{
	"cc":  core.FieldColorCorrection,
	"hue": core.FieldHueShift,
}

// MaxWorkers bounds export.workers.
const MaxWorkers = 64

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 2,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Export: ExportConfig{
			FourCC:  "mp4v",
			Workers: 1,
		},
		Preview: PreviewConfig{
			IntervalMS: 50,
			Scale:      0.5,
		},
		Presets: map[string]Preset{},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and normalizes preset keys.
func Validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("%w: logging.format must be json or text, got %q", ErrInvalidConfig, cfg.Logging.Format)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 || cfg.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("%w: logging rotation limits must be >= 0", ErrInvalidConfig)
	}

	if len(cfg.Export.FourCC) != 4 {
		return fmt.Errorf("%w: export.fourcc must be four characters, got %q", ErrInvalidConfig, cfg.Export.FourCC)
	}
	if cfg.Export.Workers < 1 || cfg.Export.Workers > MaxWorkers {
		return fmt.Errorf("%w: export.workers must be in [1, %d]", ErrInvalidConfig, MaxWorkers)
	}

	if cfg.Preview.IntervalMS <= 0 {
		return fmt.Errorf("%w: preview.interval_ms must be > 0", ErrInvalidConfig)
	}
	if cfg.Preview.Scale <= 0 || cfg.Preview.Scale > 1 {
		return fmt.Errorf("%w: preview.scale must be in (0, 1]", ErrInvalidConfig)
	}

	for name, preset := range cfg.Presets {
		normalized, err := preset.normalize()
		if err != nil {
			return fmt.Errorf("%w: preset %q: %v", ErrInvalidConfig, name, err)
		}
		if _, err := core.FromSliderValues(core.SliderValues(normalized)); err != nil {
			return fmt.Errorf("%w: preset %q: %v", ErrInvalidConfig, name, err)
		}
		cfg.Presets[name] = normalized
	}

	return nil
}

func (p Preset) normalize() (Preset, error) {
	out := make(Preset, len(p))
	for key, value := range p {
		if full, ok := presetAliases[key]; ok {
			key = full
		}
		if _, ok := core.SpecFor(key); !ok {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("field %q set twice", key)
		}
		out[key] = value
	}
	return out, nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SliderValues returns the slider positions of a preset on top of the defaults.
func (c *Config) SliderValues(preset string) (core.SliderValues, error) {
	p, ok := c.Presets[preset]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	values := core.DefaultSliderValues()
	for key, value := range p {
		values[key] = value
	}
	return values, nil
}
