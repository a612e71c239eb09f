// Color correction and brightness/contrast
package algorithms

import (
	"gocv.io/x/gocv"
)

// ColorCorrection adds cc*255 to every channel, saturating at 0 and 255.
func ColorCorrection(input gocv.Mat, cc float64) (gocv.Mat, error) {
	return affine(input, 1.0, cc*255.0)
}

// BrightnessContrast computes in*(1+contrast) + brightness*255 per channel,
// saturating at 0 and 255. Negative results clamp to 0; they are not reflected.
func BrightnessContrast(input gocv.Mat, brightness, contrast float64) (gocv.Mat, error) {
	return affine(input, 1.0+contrast, brightness*255.0)
}

func affine(input gocv.Mat, gain, offset float64) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}

	output := gocv.NewMat()
	// addWeighted with a zero second weight is a saturating gain/offset on 8-bit data
	gocv.AddWeighted(input, gain, input, 0, offset, &output)
	if output.Empty() {
		output.Close()
		return gocv.NewMat(), errEmptyResult("affine")
	}
	return output, nil
}
