// Rotation within the original canvas
package algorithms

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// RotationMatrix builds the 2x3 affine matrix rotating by degrees counter-clockwise
// about (cx, cy) with unit scale, laid out like cv::getRotationMatrix2D.
// The caller owns the returned Mat.
func RotationMatrix(cx, cy, degrees float64) gocv.Mat {
	rad := degrees * math.Pi / 180.0
	alpha := math.Cos(rad)
	beta := math.Sin(rad)

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 3, gocv.MatTypeCV64F)
	m.SetDoubleAt(0, 0, alpha)
	m.SetDoubleAt(0, 1, beta)
	m.SetDoubleAt(0, 2, (1-alpha)*cx-beta*cy)
	m.SetDoubleAt(1, 0, -beta)
	m.SetDoubleAt(1, 1, alpha)
	m.SetDoubleAt(1, 2, beta*cx+(1-alpha)*cy)
	return m
}

// Center returns the exact pixel-grid center of a w x h frame. It is half a pixel
// off the integer center for even sizes, so a half turn maps the frame onto itself
// with no black edge.
func Center(w, h int) (float64, float64) {
	return float64(w-1) / 2.0, float64(h-1) / 2.0
}

// Rotate turns input by degrees counter-clockwise about its center. The output has
// the input's size; content leaving the canvas is clipped and uncovered corners are
// black. Whole turns return an exact copy.
func Rotate(input gocv.Mat, degrees int) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if degrees%360 == 0 {
		return input.Clone(), nil
	}

	w, h := input.Cols(), input.Rows()
	cx, cy := Center(w, h)
	m := RotationMatrix(cx, cy, float64(degrees))
	defer m.Close()

	output := gocv.NewMat()
	gocv.WarpAffineWithParams(input, &output, m, image.Point{X: w, Y: h},
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{0, 0, 0, 0})
	if output.Empty() {
		output.Close()
		return gocv.NewMat(), errEmptyResult("rotation")
	}
	return output, nil
}
