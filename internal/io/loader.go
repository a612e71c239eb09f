// Video loading: decoding source files frame by frame
package io

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/core"
)

// ErrUnreadableSource is returned when a video cannot be opened or decoded.
var ErrUnreadableSource = errors.New("unreadable video source")

// DefaultFPS is used when a container does not report its frame rate.
const DefaultFPS = 30.0

var supportedVideoFormats = []string{".mp4", ".mov", ".avi", ".mkv", ".m4v"}

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used by this package.
func SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		log = logger
	}
}

// Props describes a video stream.
type Props struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int // as reported by the container; may be 0 or approximate
}

func (p Props) String() string {
	return fmt.Sprintf("%dx%d @ %.2f fps, %d frames", p.Width, p.Height, p.FPS, p.FrameCount)
}

// LogFields returns the properties as logrus fields.
func (p Props) LogFields() logrus.Fields {
	return logrus.Fields{
		"width":       p.Width,
		"height":      p.Height,
		"fps":         p.FPS,
		"frame_count": p.FrameCount,
	}
}

// VideoSource decodes frames from a video file in decode order.
type VideoSource struct {
	path    string
	capture *gocv.VideoCapture
	props   Props
}

// OpenSource opens path for decoding.
func OpenSource(path string) (*VideoSource, error) {
	log.WithField("filepath", path).Debug("Opening video")

	if !IsSupportedVideo(path) {
		return nil, fmt.Errorf("%w: unsupported format: %s", ErrUnreadableSource, path)
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s: cannot open", ErrUnreadableSource, path)
	}

	props := Props{
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	if props.FPS <= 0 || math.IsNaN(props.FPS) || math.IsInf(props.FPS, 0) {
		log.WithField("filepath", path).Warnf("Container reports no frame rate, using %.0f fps", DefaultFPS)
		props.FPS = DefaultFPS
	}
	if props.FrameCount < 0 {
		props.FrameCount = 0
	}

	log.WithFields(props.LogFields()).WithField("filepath", path).Info("Video opened")

	return &VideoSource{path: path, capture: capture, props: props}, nil
}

// Path returns the file the source was opened from.
func (s *VideoSource) Path() string { return s.path }

// Props returns the stream properties read at open time.
func (s *VideoSource) Props() Props { return s.props }

// Read decodes the next frame into dst. It returns false at end of stream or on a
// decode failure.
func (s *VideoSource) Read(dst *gocv.Mat) bool {
	if ok := s.capture.Read(dst); !ok {
		return false
	}
	return !dst.Empty()
}

// Close releases the decoder.
func (s *VideoSource) Close() error {
	return s.capture.Close()
}

// ReadFirstFrame returns the first decodable frame of path and the stream
// properties. The caller owns the returned Mat.
func ReadFirstFrame(path string) (gocv.Mat, Props, error) {
	src, err := OpenSource(path)
	if err != nil {
		return gocv.NewMat(), Props{}, err
	}
	defer src.Close()

	frame := gocv.NewMat()
	if !src.Read(&frame) {
		frame.Close()
		return gocv.NewMat(), src.Props(), fmt.Errorf("%s: %w", path, core.ErrEmptyFrame)
	}

	// trust the decoded frame over container metadata
	props := src.Props()
	props.Width, props.Height = frame.Cols(), frame.Rows()
	return frame, props, nil
}

// IsSupportedVideo reports whether path has a recognised video extension.
func IsSupportedVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedVideoFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// SupportedVideoFormats returns the accepted file extensions.
func SupportedVideoFormats() []string {
	out := make([]string, len(supportedVideoFormats))
	copy(out, supportedVideoFormats)
	return out
}
