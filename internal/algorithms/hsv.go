// Hue and saturation adjustments through the 8-bit HSV representation
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// HueRange is the cyclic domain of the 8-bit HSV hue channel.
const HueRange = 180

// FoldHue reduces a shift in degrees to the [0, HueRange) hue domain.
func FoldHue(shift int) int {
	s := shift % HueRange
	if s < 0 {
		s += HueRange
	}
	return s
}

// HueShift adds shift (folded mod 180) to the hue channel, wrapping mod 180.
func HueShift(input gocv.Mat, shift int) (gocv.Mat, error) {
	delta := FoldHue(shift)
	return mapHSV(input, "hue_shift", func(px []uint8) {
		for i := 0; i < len(px); i += 3 {
			px[i] = uint8((int(px[i]) + delta) % HueRange)
		}
	})
}

// Saturation scales the saturation channel by 1+factor, clamps to [0, 255] and
// truncates toward zero.
func Saturation(input gocv.Mat, factor float64) (gocv.Mat, error) {
	gain := 1.0 + factor
	var lut [256]uint8
	for v := range lut {
		s := float64(v) * gain
		switch {
		case s < 0:
			s = 0
		case s > 255:
			s = 255
		}
		lut[v] = uint8(s)
	}

	return mapHSV(input, "saturation", func(px []uint8) {
		for i := 1; i < len(px); i += 3 {
			px[i] = lut[px[i]]
		}
	})
}

// mapHSV converts input to HSV, lets fn edit the interleaved H,S,V bytes of that
// private copy in place and converts back to BGR.
func mapHSV(input gocv.Mat, op string, fn func(px []uint8)) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(input, &hsv, gocv.ColorBGRToHSV); err != nil {
		return gocv.NewMat(), fmt.Errorf("%s: BGR to HSV: %w", op, err)
	}

	px, err := hsv.DataPtrUint8()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%s: HSV data: %w", op, err)
	}
	fn(px)

	output := gocv.NewMat()
	if err := gocv.CvtColor(hsv, &output, gocv.ColorHSVToBGR); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("%s: HSV to BGR: %w", op, err)
	}
	return output, nil
}
