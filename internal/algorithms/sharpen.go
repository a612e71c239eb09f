// Unnormalized 3x3 sharpening
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// SharpenKernel returns the 3x3 kernel [[0,-1,0],[-1,5+amount,-1],[0,-1,0]] as CV_64F.
// The caller owns the returned Mat.
func SharpenKernel(amount float64) gocv.Mat {
	kernel := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 3, 3, gocv.MatTypeCV64F)
	kernel.SetDoubleAt(0, 1, -1)
	kernel.SetDoubleAt(1, 0, -1)
	kernel.SetDoubleAt(1, 1, 5+amount)
	kernel.SetDoubleAt(1, 2, -1)
	kernel.SetDoubleAt(2, 1, -1)
	return kernel
}

// Sharpen convolves input with SharpenKernel(amount). The kernel is not
// normalized; results are saturated to the 8-bit range. Borders use reflect-101.
func Sharpen(input gocv.Mat, amount float64) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}

	kernel := SharpenKernel(amount)
	defer kernel.Close()

	output := gocv.NewMat()
	if err := gocv.Filter2D(input, &output, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("sharpness: filter2D: %w", err)
	}
	return output, nil
}
