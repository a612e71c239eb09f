package core

import (
	"errors"
	"image"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/metrics"
	"video-adjustment-tool/internal/testutil"
)

func mustParams(t *testing.T, cc, b, c float64, hue int, sh, sat float64, rot int) ParameterSet {
	t.Helper()
	p, err := NewParameterSet(cc, b, c, hue, sh, sat, rot)
	require.NoError(t, err)
	return p
}

func quietLogger() *logrus.Logger {
	logger, _ := logtest.NewNullLogger()
	return logger
}

func TestProcessEmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	out, err := Process(empty, Neutral())
	defer out.Close()

	assert.ErrorIs(t, err, ErrEmptyFrame)
	assert.True(t, out.Empty())
}

func TestProcessRejectsNonBGR(t *testing.T) {
	gray := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8U)
	defer gray.Close()

	out, err := Process(gray, Neutral())
	defer out.Close()

	assert.ErrorIs(t, err, ErrUnsupportedFrame)
}

func TestNeutralParametersPreserveFlatFrames(t *testing.T) {
	colors := [][3]uint8{
		{128, 128, 128},
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	}

	for _, c := range colors {
		in := testutil.FlatFrame(t, 16, 12, c[0], c[1], c[2])
		out, err := Process(in, Neutral())
		require.NoError(t, err)

		diff, err := metrics.NewMaxAbsDiff().Calculate(in, out)
		require.NoError(t, err)
		assert.LessOrEqual(t, diff, 1.0, "color %v", c)
		out.Close()
	}
}

func TestNeutralParametersOnGradients(t *testing.T) {
	const w, h = 32, 24

	t.Run("gray ramp is exact away from the border", func(t *testing.T) {
		// unit slope on both axes: the sharpen kernel sees zero curvature inside
		in := testutil.PatternFrame(t, w, h, func(x, y int) (uint8, uint8, uint8) {
			v := uint8(60 + x + y)
			return v, v, v
		})
		out, err := Process(in, Neutral())
		require.NoError(t, err)
		defer out.Close()

		inner := image.Rect(1, 1, w-1, h-1)
		a, b := in.Region(inner), out.Region(inner)
		defer a.Close()
		defer b.Close()
		ac, bc := a.Clone(), b.Clone()
		defer ac.Close()
		defer bc.Close()
		assert.True(t, metrics.Equal(ac, bc))

		// reflect-101 borders see one-sided slope on each axis
		diff, err := metrics.NewMaxAbsDiff().Calculate(in, out)
		require.NoError(t, err)
		assert.LessOrEqual(t, diff, 4.0)
	})

	t.Run("color gradient stays close through the HSV round trips", func(t *testing.T) {
		in := testutil.PatternFrame(t, w, h, func(x, y int) (uint8, uint8, uint8) {
			return uint8(100 + x), uint8(100 + y), 100
		})
		out, err := Process(in, Neutral())
		require.NoError(t, err)
		defer out.Close()

		psnr, err := metrics.NewPSNR().Calculate(in, out)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, psnr, 30.0)
	})
}

func TestToneExtremesSaturate(t *testing.T) {
	in := testutil.PatternFrame(t, 24, 18, testutil.Gradient(24, 18))

	tests := []struct {
		name                     string
		cc, brightness, contrast float64
		want                     uint8
	}{
		{"full correction", 1, 0, 0, 255},
		{"full correction then zero gain", 1, 0, -1, 0},
		{"zero gain with offset", 1, 0.4, -1, 102},
		{"full negative brightness", 0, -1, 0, 0},
		{"negative brightness after correction", 1, -1, 0, 0},
		{"full brightness with any contrast", 0, 1, -0.5, 255},
		{"double gain on lifted input", 0.5, 0, 1, 255},
		{"everything at maximum", 1, 1, 1, 255},
		{"everything at minimum", 0, -1, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Process(in, mustParams(t, tt.cc, tt.brightness, tt.contrast, 0, 0, 0, 0))
			require.NoError(t, err)
			defer out.Close()
			want := [3]uint8{tt.want, tt.want, tt.want}
			assert.True(t, testutil.Uniform(out, want), "got %v", testutil.Pixel(t, out, 3, 3))
		})
	}
}

func TestProcessSaturatesInsteadOfReflecting(t *testing.T) {
	in := testutil.FlatFrame(t, 10, 10, 100, 100, 100)

	out, err := Process(in, mustParams(t, 0, -1, 0, 0, 0, 0, 0))
	require.NoError(t, err)
	assert.True(t, testutil.Uniform(out, [3]uint8{0, 0, 0}), "got %v", testutil.Pixel(t, out, 5, 5))
	out.Close()

	out, err = Process(in, mustParams(t, 0, 1, 1, 0, 0, 0, 0))
	require.NoError(t, err)
	defer out.Close()
	assert.True(t, testutil.Uniform(out, [3]uint8{255, 255, 255}))
}

func TestHueShiftIsPeriodic(t *testing.T) {
	in := testutil.PatternFrame(t, 24, 18, testutil.Gradient(24, 18))

	a, err := Process(in, mustParams(t, 0, 0, 0, 10, 0, 0, 0))
	require.NoError(t, err)
	defer a.Close()

	b, err := Process(in, mustParams(t, 0, 0, 0, 190, 0, 0, 0))
	require.NoError(t, err)
	defer b.Close()

	assert.True(t, metrics.Equal(a, b))
}

func TestProcessIsDeterministicAndLeavesInputAlone(t *testing.T) {
	in := testutil.PatternFrame(t, 32, 20, testutil.Gradient(32, 20))
	original := in.Clone()
	defer original.Close()

	params := mustParams(t, 0.3, 0.1, 0.2, 45, 0.5, -0.3, 30)

	first, err := Process(in, params)
	require.NoError(t, err)
	defer first.Close()

	second, err := Process(in, params)
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, metrics.Equal(first, second))
	assert.True(t, metrics.Equal(original, in), "input frame was modified")
	assert.Equal(t, in.Cols(), first.Cols())
	assert.Equal(t, in.Rows(), first.Rows())
	assert.Equal(t, gocv.MatTypeCV8UC3, first.Type())
}

func TestNoStepsReturnsCopy(t *testing.T) {
	in := testutil.FlatFrame(t, 4, 4, 1, 2, 3)
	p := &Pipeline{logger: quietLogger()}

	out, err := p.Process(in, Neutral())
	require.NoError(t, err)
	defer out.Close()

	assert.True(t, metrics.Equal(in, out))
	assert.NotEqual(t, in.Ptr(), out.Ptr())
}

func swapSteps(i, j int) *Pipeline {
	swapped := make([]Step, len(defaultSteps))
	copy(swapped, defaultSteps)
	swapped[i], swapped[j] = swapped[j], swapped[i]
	return &Pipeline{steps: swapped, logger: quietLogger()}
}

func TestHueBeforeSaturationOrderMatters(t *testing.T) {
	// mid-saturation red and blue; the sharpen pass between them mixes neighbors
	in := testutil.PatternFrame(t, 8, 8, testutil.Checker([3]uint8{60, 60, 180}, [3]uint8{180, 60, 60}))
	params := mustParams(t, 0, 0, 0, 60, 0, 0.5, 0)

	a, err := NewPipeline(WithLogger(quietLogger())).Process(in, params)
	require.NoError(t, err)
	defer a.Close()

	b, err := swapSteps(2, 4).Process(in, params)
	require.NoError(t, err)
	defer b.Close()

	assert.False(t, metrics.Equal(a, b))

	pa, pb := testutil.Pixel(t, a, 0, 0), testutil.Pixel(t, b, 0, 0)
	assert.Greater(t, int(pa[0])-int(pb[0]), 30, "standard %v, swapped %v", pa, pb)
}

func TestSharpenBeforeRotationOrderMatters(t *testing.T) {
	in := testutil.FlatFrame(t, 40, 40, 100, 100, 100)
	params := mustParams(t, 0, 0, 0, 0, 0.5, 0, 45)

	standard := NewPipeline(WithLogger(quietLogger()))
	reordered := swapSteps(3, 5)

	a, err := standard.Process(in, params)
	require.NoError(t, err)
	defer a.Close()

	b, err := reordered.Process(in, params)
	require.NoError(t, err)
	defer b.Close()

	assert.False(t, metrics.Equal(a, b), "rotating before sharpening must sharpen the new black border")
	assert.Equal(t, testutil.Pixel(t, a, 20, 20), testutil.Pixel(t, b, 20, 20))
}

func TestStepNames(t *testing.T) {
	assert.Equal(t, []string{
		StepColorCorrection,
		StepBrightnessContrast,
		StepHueShift,
		StepSharpness,
		StepSaturation,
		StepRotation,
	}, NewPipeline().StepNames())
}

func TestFailingStepIsReported(t *testing.T) {
	in := testutil.FlatFrame(t, 4, 4, 10, 20, 30)
	boom := errors.New("boom")

	logger, hook := logtest.NewNullLogger()
	p := &Pipeline{
		logger: logger,
		steps: []Step{
			{Name: "identity", Apply: func(m gocv.Mat, _ ParameterSet) (gocv.Mat, error) { return m.Clone(), nil }},
			{Name: "broken", Apply: func(gocv.Mat, ParameterSet) (gocv.Mat, error) { return gocv.NewMat(), boom }},
		},
	}

	out, err := p.Process(in, Neutral())
	defer out.Close()

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step broken")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "broken", hook.LastEntry().Data["step"])
}

func TestPanickingStepIsRecovered(t *testing.T) {
	in := testutil.FlatFrame(t, 4, 4, 10, 20, 30)
	p := &Pipeline{
		logger: quietLogger(),
		steps: []Step{
			{Name: "explodes", Apply: func(gocv.Mat, ParameterSet) (gocv.Mat, error) { panic("bad kernel") }},
		},
	}

	out, err := p.Process(in, Neutral())
	defer out.Close()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad kernel")
}

func TestTracerCollectsPerStepStats(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tracer := NewTracer(logger, true)
	p := NewPipeline(WithLogger(logger), WithTracer(tracer))
	assert.Same(t, tracer, p.Tracer())

	in := testutil.PatternFrame(t, 16, 16, testutil.Gradient(16, 16))
	for i := 0; i < 3; i++ {
		out, err := p.Process(in, mustParams(t, 0.2, 0, 0, 20, 0.1, 0.1, 10))
		require.NoError(t, err)
		out.Close()
	}

	stats := tracer.Stats()
	require.Len(t, stats, 6)
	for i, name := range p.StepNames() {
		assert.Equal(t, name, stats[i].Name)
		assert.Equal(t, 3, stats[i].Calls)
		assert.GreaterOrEqual(t, stats[i].Max, stats[i].Mean())
	}
	assert.Len(t, hook.AllEntries(), 18)

	tracer.Reset()
	assert.Empty(t, tracer.Stats())

	var nilTracer *Tracer
	assert.Nil(t, nilTracer.Stats())
}
