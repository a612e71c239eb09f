// Concrete implementations of frame metrics
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyFrame is returned when either side of a comparison is empty.
	ErrEmptyFrame = errors.New("empty images")
	// ErrShapeMismatch is returned when frames differ in size, channels or depth.
	ErrShapeMismatch = errors.New("image dimensions mismatch")
)

// MSE implements Mean Squared Error over every channel sample
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(reference, processed gocv.Mat) (float64, error) {
	a, b, err := samples(reference, processed)
	if err != nil {
		return 0, err
	}
	return meanSquared(a, b), nil
}

func (m *MSE) GetName() string { return "MSE" }

// PSNR implements Peak Signal-to-Noise Ratio for 8-bit samples
type PSNR struct{}

func NewPSNR() *PSNR { return &PSNR{} }

// Calculate returns +Inf for identical frames.
func (p *PSNR) Calculate(reference, processed gocv.Mat) (float64, error) {
	a, b, err := samples(reference, processed)
	if err != nil {
		return 0, err
	}
	mse := meanSquared(a, b)
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string { return "PSNR" }

// MaxAbsDiff reports the largest per-channel difference between two frames.
type MaxAbsDiff struct{}

func NewMaxAbsDiff() *MaxAbsDiff { return &MaxAbsDiff{} }

func (d *MaxAbsDiff) Calculate(reference, processed gocv.Mat) (float64, error) {
	a, b, err := samples(reference, processed)
	if err != nil {
		return 0, err
	}
	worst := 0
	for i := range a {
		diff := int(a[i]) - int(b[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > worst {
			worst = diff
		}
	}
	return float64(worst), nil
}

func (d *MaxAbsDiff) GetName() string { return "Max Abs Diff" }

// Equal reports whether two frames have the same shape and identical bytes.
func Equal(a, b gocv.Mat) bool {
	x, y, err := samples(a, b)
	if err != nil {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func samples(a, b gocv.Mat) ([]byte, []byte, error) {
	if a.Empty() || b.Empty() {
		return nil, nil, ErrEmptyFrame
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Type() != b.Type() {
		return nil, nil, fmt.Errorf("%w: %dx%d type %d vs %dx%d type %d", ErrShapeMismatch,
			a.Cols(), a.Rows(), int(a.Type()), b.Cols(), b.Rows(), int(b.Type()))
	}
	return a.ToBytes(), b.ToBytes(), nil
}

func meanSquared(a, b []byte) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0.0
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return sum / float64(len(a))
}
