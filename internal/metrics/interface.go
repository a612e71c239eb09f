// Frame comparison metrics
package metrics

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Metric compares two frames of equal size and type.
type Metric interface {
	// Calculate computes the metric value
	Calculate(reference, processed gocv.Mat) (float64, error)

	// GetName returns the display name used in error messages
	GetName() string
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

// RegisterDefaultMetrics registers mse, psnr and max_abs_diff.
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("max_abs_diff", NewMaxAbsDiff())
}

// Register registers a metric under name, replacing any previous one.
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, reference, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	value, err := metric.Calculate(reference, processed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", metric.GetName(), err)
	}
	return value, nil
}

// CalculateAll calculates every registered metric, skipping those that fail.
func (e *Evaluator) CalculateAll(reference, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(reference, processed); err == nil {
			results[name] = value
		}
	}
	return results
}
