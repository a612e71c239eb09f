// Per-frame adjustment operations on 8-bit BGR frames
package algorithms

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyInput is returned when an operation receives an empty Mat.
	ErrEmptyInput = errors.New("input image is empty")
	// ErrUnsupportedInput is returned for anything other than 8-bit, 3-channel Mats.
	ErrUnsupportedInput = errors.New("input image must be 8-bit BGR")
)

// Info describes an operation for logs and UI tooltips.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var descriptions = map[string]Info{
	"color_correction": {
		Name:        "Color Correction",
		Description: "Adds a saturated per-channel offset of cc*255",
	},
	"brightness_contrast": {
		Name:        "Brightness / Contrast",
		Description: "Affine per-channel transform in*(1+contrast) + brightness*255, saturated",
	},
	"hue_shift": {
		Name:        "Hue Shift",
		Description: "Rotates the 8-bit HSV hue channel, cyclic over 180",
	},
	"sharpness": {
		Name:        "Sharpness",
		Description: "3x3 unsharp kernel with center weight 5+sharpness",
	},
	"saturation": {
		Name:        "Saturation",
		Description: "Scales the HSV saturation channel by 1+saturation",
	},
	"rotation": {
		Name:        "Rotation",
		Description: "Rotates about the frame center within the original canvas",
	},
}

// Describe returns the description registered for an operation name.
func Describe(name string) (Info, bool) {
	info, ok := descriptions[name]
	return info, ok
}

func checkInput(input gocv.Mat) error {
	if input.Empty() {
		return ErrEmptyInput
	}
	if input.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: got type %d with %d channels", ErrUnsupportedInput, int(input.Type()), input.Channels())
	}
	return nil
}

func errEmptyResult(op string) error {
	return fmt.Errorf("%s produced an empty result", op)
}
