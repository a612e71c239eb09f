// Frame validation and metadata
package core

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyFrame signals an absent frame; the pipeline does nothing with it.
	ErrEmptyFrame = errors.New("no frame to process")
	// ErrUnsupportedFrame is returned for frames that are not 8-bit BGR.
	ErrUnsupportedFrame = errors.New("unsupported frame format")
)

// MaxDimension bounds frame width and height.
const MaxDimension = 16384

// FrameInfo describes a frame's geometry and pixel layout.
type FrameInfo struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// InfoOf returns the geometry of mat.
func InfoOf(mat gocv.Mat) FrameInfo {
	return FrameInfo{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

func (f FrameInfo) String() string {
	return fmt.Sprintf("%dx%d, %d channels", f.Width, f.Height, f.Channels)
}

// ValidateFrame checks that mat is a non-empty 8-bit 3-channel frame of sane size.
func ValidateFrame(mat gocv.Mat) error {
	if mat.Empty() {
		return ErrEmptyFrame
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedFrame, mat.Cols(), mat.Rows())
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: expected 8-bit BGR, got %d channels (type %d)",
			ErrUnsupportedFrame, mat.Channels(), int(mat.Type()))
	}

	if mat.Cols() > MaxDimension || mat.Rows() > MaxDimension {
		return fmt.Errorf("%w: frame too large: %dx%d (max: %d)",
			ErrUnsupportedFrame, mat.Cols(), mat.Rows(), MaxDimension)
	}

	return nil
}
