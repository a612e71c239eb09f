// Frame pipeline: the fixed, ordered chain of adjustments shared by preview and export
package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/algorithms"
)

// Step names in pipeline order.
const (
	StepColorCorrection    = "color_correction"
	StepBrightnessContrast = "brightness_contrast"
	StepHueShift           = "hue_shift"
	StepSharpness          = "sharpness"
	StepSaturation         = "saturation"
	StepRotation           = "rotation"
)

// Step is one named transform. Apply must return a newly allocated Mat and must not
// modify its input.
type Step struct {
	Name  string
	Apply func(input gocv.Mat, params ParameterSet) (gocv.Mat, error)
}

// Each step assumes the color state left by its predecessor; keep this order.
var defaultSteps = []Step{
	{
		Name: StepColorCorrection,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.ColorCorrection(in, p.ColorCorrection())
		},
	},
	{
		Name: StepBrightnessContrast,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.BrightnessContrast(in, p.Brightness(), p.Contrast())
		},
	},
	{
		Name: StepHueShift,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.HueShift(in, p.HueShift())
		},
	},
	{
		Name: StepSharpness,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.Sharpen(in, p.Sharpness())
		},
	},
	{
		Name: StepSaturation,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.Saturation(in, p.Saturation())
		},
	},
	{
		Name: StepRotation,
		Apply: func(in gocv.Mat, p ParameterSet) (gocv.Mat, error) {
			return algorithms.Rotate(in, p.Rotation())
		},
	},
}

// Pipeline applies the adjustment steps to frames. It holds no per-call state, so
// Process may be called concurrently.
type Pipeline struct {
	steps  []Step
	logger logrus.FieldLogger
	tracer *Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracer enables per-step timing.
func WithTracer(t *Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// NewPipeline builds a pipeline with the standard step order.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  defaultSteps,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Tracer returns the pipeline's tracer, which may be nil.
func (p *Pipeline) Tracer() *Tracer {
	return p.tracer
}

// Process runs every step on frame and returns a new Mat owned by the caller.
// frame is never modified or returned. An empty frame is a no-op that reports
// ErrEmptyFrame.
func (p *Pipeline) Process(frame gocv.Mat, params ParameterSet) (gocv.Mat, error) {
	if err := ValidateFrame(frame); err != nil {
		return gocv.NewMat(), err
	}

	current, owned := frame, false
	for _, step := range p.steps {
		start := time.Now()
		next, err := runStep(step, current, params)
		if err == nil {
			p.tracer.Observe(step.Name, time.Since(start), current, next)
		}
		if owned {
			current.Close()
		}
		if err != nil {
			next.Close()
			p.logger.WithFields(logrus.Fields{
				"step":  step.Name,
				"error": err,
			}).Error("pipeline step failed")
			return gocv.NewMat(), fmt.Errorf("step %s: %w", step.Name, err)
		}
		current, owned = next, true
	}

	if !owned {
		return frame.Clone(), nil
	}
	return current, nil
}

func runStep(step Step, input gocv.Mat, params ParameterSet) (out gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = gocv.NewMat()
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	out, err = step.Apply(input, params)
	if err != nil {
		return out, err
	}
	if out.Empty() {
		return out, fmt.Errorf("returned empty result")
	}
	return out, nil
}

var defaultPipeline = NewPipeline()

// Process runs the standard pipeline without tracing.
func Process(frame gocv.Mat, params ParameterSet) (gocv.Mat, error) {
	return defaultPipeline.Process(frame, params)
}
