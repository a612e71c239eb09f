// Package preview renders the adjusted first frame of a video for live display.
package preview

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/core"
	vio "video-adjustment-tool/internal/io"
	"video-adjustment-tool/internal/metrics"
)

const (
	// DefaultInterval is the refresh period while playing.
	DefaultInterval = 50 * time.Millisecond
	// DefaultScale shrinks the preview to half size.
	DefaultScale = 0.5
)

// Controller holds the cached preview frame and drives the periodic refresh.
type Controller struct {
	mu       sync.Mutex
	frame    gocv.Mat
	props    vio.Props
	path     string
	pipeline *core.Pipeline
	scale    float64
	logger   logrus.FieldLogger

	evaluator *metrics.Evaluator

	playMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithPipeline renders with p instead of the standard pipeline.
func WithPipeline(p *core.Pipeline) Option {
	return func(c *Controller) { c.pipeline = p }
}

// WithScale sets the preview downscale factor.
func WithScale(scale float64) Option {
	return func(c *Controller) {
		if scale > 0 {
			c.scale = scale
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) { c.logger = logger }
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		frame:     gocv.NewMat(),
		scale:     DefaultScale,
		logger:    logrus.StandardLogger(),
		evaluator: metrics.NewEvaluator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = core.NewPipeline(core.WithLogger(c.logger))
	}
	return c
}

// Load caches the first frame of the video at path, replacing any previous frame.
func (c *Controller) Load(path string) error {
	frame, props, err := vio.ReadFirstFrame(path)
	if err != nil {
		frame.Close()
		return err
	}

	c.mu.Lock()
	c.frame.Close()
	c.frame, c.props, c.path = frame, props, path
	c.mu.Unlock()

	c.logger.WithFields(props.LogFields()).WithField("filepath", path).Info("Preview frame loaded")
	return nil
}

// SetFrame caches a copy of frame as the preview source.
func (c *Controller) SetFrame(frame gocv.Mat, props vio.Props) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Close()
	c.frame, c.props, c.path = frame.Clone(), props, ""
}

// Loaded reports whether a frame is cached.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.frame.Empty()
}

// Source returns the path and properties of the loaded video.
func (c *Controller) Source() (string, vio.Props) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.props
}

// RenderFrame applies params to the cached frame at full resolution. The caller
// owns the returned Mat.
func (c *Controller) RenderFrame(params core.ParameterSet) (gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.Process(c.frame, params)
}

// Measure compares the adjusted frame with the cached original using the
// default frame metrics.
func (c *Controller) Measure(params core.ParameterSet) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.pipeline.Process(c.frame, params)
	defer out.Close()
	if err != nil {
		return nil, err
	}
	return c.evaluator.CalculateAll(c.frame, out), nil
}

// Render applies params to the cached frame and returns the scaled preview.
// It returns core.ErrEmptyFrame when nothing is loaded.
func (c *Controller) Render(params core.ParameterSet) (image.Image, error) {
	out, err := c.RenderFrame(params)
	defer out.Close()
	if err != nil {
		return nil, err
	}

	img, err := vio.PreviewImage(out, c.scale)
	if err != nil {
		return nil, fmt.Errorf("preview image: %w", err)
	}
	return img, nil
}

// Play re-renders every interval with the parameters returned by snapshot until
// Pause is called. Renders run on a single goroutine and never overlap. The
// callbacks must not call Pause or Play.
func (c *Controller) Play(interval time.Duration, snapshot func() core.ParameterSet,
	onFrame func(image.Image), onErr func(error)) {

	if interval <= 0 {
		interval = DefaultInterval
	}

	c.playMu.Lock()
	defer c.playMu.Unlock()
	if c.stop != nil {
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	c.stop, c.done = stop, done

	c.logger.WithField("interval_ms", interval.Milliseconds()).Debug("Preview playing")

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				img, err := c.Render(snapshot())
				if err != nil {
					if onErr != nil {
						onErr(err)
					}
					continue
				}
				if onFrame != nil {
					onFrame(img)
				}
			}
		}
	}()
}

// Pause stops the refresh and waits for an in-progress render to finish.
func (c *Controller) Pause() {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
	c.logger.Debug("Preview paused")
}

// Playing reports whether the refresh is running.
func (c *Controller) Playing() bool {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	return c.stop != nil
}

// Close stops playback and releases the cached frame.
func (c *Controller) Close() {
	c.Pause()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Close()
	c.frame = gocv.NewMat()
}
