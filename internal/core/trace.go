// Per-step timing and quality tracing for the frame pipeline
package core

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/metrics"
)

// StepStats aggregates the timings of one pipeline step.
type StepStats struct {
	Name  string
	Calls int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average duration per call.
func (s StepStats) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Tracer records step timings and, optionally, PSNR between a step's input and
// output. It is safe for concurrent use; a nil *Tracer records nothing.
type Tracer struct {
	mu          sync.Mutex
	logger      logrus.FieldLogger
	evaluator   *metrics.Evaluator
	withMetrics bool
	stats       map[string]*StepStats
	order       []string
}

func NewTracer(logger logrus.FieldLogger, withMetrics bool) *Tracer {
	return &Tracer{
		logger:      logger,
		evaluator:   metrics.NewEvaluator(),
		withMetrics: withMetrics,
		stats:       make(map[string]*StepStats),
	}
}

// Observe records one step execution.
func (t *Tracer) Observe(step string, duration time.Duration, before, after gocv.Mat) {
	if t == nil {
		return
	}

	t.mu.Lock()
	s, ok := t.stats[step]
	if !ok {
		s = &StepStats{Name: step}
		t.stats[step] = s
		t.order = append(t.order, step)
	}
	s.Calls++
	s.Total += duration
	if duration > s.Max {
		s.Max = duration
	}
	t.mu.Unlock()

	if t.logger == nil {
		return
	}
	fields := logrus.Fields{
		"step":        step,
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
		"width":       after.Cols(),
		"height":      after.Rows(),
		"channels":    after.Channels(),
	}
	if t.withMetrics {
		// identical frames give +Inf, which JSON output cannot carry
		if psnr, err := t.evaluator.Calculate("psnr", before, after); err == nil && !math.IsInf(psnr, 0) {
			fields["psnr_db"] = psnr
		}
	}
	t.logger.WithFields(fields).Debug("pipeline step applied")
}

// Stats returns a copy of the aggregated timings in first-seen order.
func (t *Tracer) Stats() []StepStats {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]StepStats, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.stats[name])
	}
	return out
}

// Reset clears the aggregated timings.
func (t *Tracer) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*StepStats)
	t.order = nil
}
