// Package testutil builds synthetic frames for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// FlatFrame returns a w x h BGR frame filled with one color. It is closed when the
// test ends.
func FlatFrame(t testing.TB, w, h int, b, g, r uint8) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(b), float64(g), float64(r), 0), h, w, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

// PatternFrame returns a w x h BGR frame whose pixels come from fn. It is closed
// when the test ends.
func PatternFrame(t testing.TB, w, h int, fn func(x, y int) (b, g, r uint8)) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })

	px, err := m.DataPtrUint8()
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			px[i], px[i+1], px[i+2] = fn(x, y)
		}
	}
	return m
}

// Gradient is a smooth colorful pattern for PatternFrame.
func Gradient(w, h int) func(x, y int) (uint8, uint8, uint8) {
	return func(x, y int) (uint8, uint8, uint8) {
		return uint8(x * 255 / max(w-1, 1)), uint8(y * 255 / max(h-1, 1)), uint8((x + y) * 127 / max(w+h-2, 1))
	}
}

// Checker alternates two colors pixel by pixel.
func Checker(a, b [3]uint8) func(x, y int) (uint8, uint8, uint8) {
	return func(x, y int) (uint8, uint8, uint8) {
		if (x+y)%2 == 0 {
			return a[0], a[1], a[2]
		}
		return b[0], b[1], b[2]
	}
}

// Pixel returns the B,G,R bytes at (x, y).
func Pixel(t testing.TB, m gocv.Mat, x, y int) [3]uint8 {
	t.Helper()
	px := m.ToBytes()
	i := (y*m.Cols() + x) * 3
	require.Less(t, i+2, len(px))
	return [3]uint8{px[i], px[i+1], px[i+2]}
}

// Uniform reports whether every pixel of m equals bgr.
func Uniform(m gocv.Mat, bgr [3]uint8) bool {
	px := m.ToBytes()
	for i := 0; i+2 < len(px); i += 3 {
		if px[i] != bgr[0] || px[i+1] != bgr[1] || px[i+2] != bgr[2] {
			return false
		}
	}
	return len(px) > 0
}
