// Still images: preview conversion and snapshot export
package io

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/core"
)

// PreviewImage converts a BGR frame to an RGB image scaled by scale (0 < scale < 1
// shrinks, 1 keeps size). Each side stays at least one pixel.
func PreviewImage(frame gocv.Mat, scale float64) (image.Image, error) {
	if frame.Empty() {
		return nil, core.ErrEmptyFrame
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid preview scale %v", scale)
	}

	// ToImage reorders BGR into RGBA
	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	if scale == 1 {
		return img, nil
	}

	b := img.Bounds()
	w := max(int(float64(b.Dx())*scale), 1)
	h := max(int(float64(b.Dy())*scale), 1)

	return imaging.Resize(img, w, h, imaging.Linear), nil
}

// SaveStill writes a frame as an image file; the format follows the extension.
func SaveStill(frame gocv.Mat, path string) error {
	if frame.Empty() {
		return fmt.Errorf("save still: %w", core.ErrEmptyFrame)
	}

	img, err := frame.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, path, err)
	}

	log.WithField("filepath", path).Info("Still saved")
	return nil
}
