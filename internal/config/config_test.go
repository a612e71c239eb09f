package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-adjustment-tool/internal/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "mp4v", cfg.Export.FourCC)
	assert.Equal(t, 1, cfg.Export.Workers)
	assert.Equal(t, 50, cfg.Preview.IntervalMS)
	assert.Equal(t, 0.5, cfg.Preview.Scale)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Empty(t, cfg.PresetNames())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
export:
  workers: 4
presets:
  warm:
    cc: 60
    hue: 10
    saturation: 20
  tilt:
    rotation: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Export.Workers)
	assert.Equal(t, "mp4v", cfg.Export.FourCC)
	assert.Equal(t, []string{"tilt", "warm"}, cfg.PresetNames())

	values, err := cfg.SliderValues("warm")
	require.NoError(t, err)
	assert.Equal(t, 60, values[core.FieldColorCorrection])
	assert.Equal(t, 10, values[core.FieldHueShift])
	assert.Equal(t, 0, values[core.FieldBrightness])

	params, err := core.FromSliderValues(values)
	require.NoError(t, err)
	assert.Equal(t, 0.6, params.ColorCorrection())
	assert.Equal(t, 0.2, params.Saturation())

	_, err = cfg.SliderValues("cold")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "export: [",
		"level":            "logging:\n  level: loud\n",
		"format":           "logging:\n  format: xml\n",
		"fourcc":           "export:\n  fourcc: h264x\n",
		"workers":          "export:\n  workers: 0\n",
		"interval":         "preview:\n  interval_ms: -5\n",
		"scale":            "preview:\n  scale: 2\n",
		"unknown field":    "presets:\n  x:\n    gamma: 3\n",
		"out of range":     "presets:\n  x:\n    brightness: 300\n",
		"alias duplicated": "presets:\n  x:\n    cc: 10\n    color_correction: 20\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	logger, closer, err := NewLogger(Default().Logging, false)
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, closer, err = NewLogger(Default().Logging, true)
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := Default().Logging
	cfg.File = filepath.Join(t.TempDir(), "logs", "tool.log")
	cfg.Level = "warn"

	logger, closer, err := NewLogger(cfg, false)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.WithField("frames", 3).Warn("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"kept"`))
	assert.False(t, strings.Contains(string(data), "dropped"))
}
