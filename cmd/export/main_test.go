package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-adjustment-tool/internal/config"
	"video-adjustment-tool/internal/core"
)

func TestParseFlagsRequiresPaths(t *testing.T) {
	_, _, err := parseFlags([]string{"--in", "a.mp4"})
	assert.Error(t, err)

	_, _, err = parseFlags([]string{"--cc", "nope"})
	assert.Error(t, err)
}

func TestSliderValuesLayering(t *testing.T) {
	cfg := config.Default()
	cfg.Presets["warm"] = config.Preset{core.FieldColorCorrection: 70, core.FieldSaturation: 30}

	opts, fs, err := parseFlags([]string{
		"--in", "a.mp4", "--out", "b.mp4",
		"--preset", "warm",
		"--saturation", "-10",
		"--hue", "90",
	})
	require.NoError(t, err)

	values, err := sliderValues(opts, fs, cfg)
	require.NoError(t, err)

	assert.Equal(t, 70, values[core.FieldColorCorrection], "preset value kept")
	assert.Equal(t, -10, values[core.FieldSaturation], "flag overrides preset")
	assert.Equal(t, 90, values[core.FieldHueShift])
	assert.Equal(t, 0, values[core.FieldRotation], "default elsewhere")

	opts.preset = "missing"
	_, err = sliderValues(opts, fs, cfg)
	assert.Error(t, err)
}

func TestSliderValuesWithoutPreset(t *testing.T) {
	opts, fs, err := parseFlags([]string{"--in", "a.mp4", "--out", "b.mp4", "--rotation", "45"})
	require.NoError(t, err)

	values, err := sliderValues(opts, fs, config.Default())
	require.NoError(t, err)

	params, err := core.FromSliderValues(values)
	require.NoError(t, err)
	assert.Equal(t, 45, params.Rotation())
	assert.Equal(t, 0.0, params.ColorCorrection())
}

func TestRunRejectsBadInput(t *testing.T) {
	assert.Equal(t, 2, run([]string{"--out", "b.mp4"}))
	assert.Equal(t, 1, run([]string{"--in", "missing.mp4", "--out", t.TempDir() + "/b.mp4", "--brightness", "500"}))
	assert.Equal(t, 1, run([]string{"--in", "missing.mp4", "--out", t.TempDir() + "/b.mp4"}))
}
