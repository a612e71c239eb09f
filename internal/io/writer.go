// Video writing: encoding processed frames into a container
package io

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrUnwritableDestination is returned when output cannot be created or written.
var ErrUnwritableDestination = errors.New("unwritable destination")

// DefaultFourCC is the codec used when none is configured.
const DefaultFourCC = "mp4v"

// VideoSink encodes frames of a fixed size into a file.
type VideoSink struct {
	path   string
	writer *gocv.VideoWriter
	props  Props
	frames int
	closed bool
}

// CreateSink opens path for writing frames of props' size at props' frame rate.
func CreateSink(path, fourcc string, props Props) (*VideoSink, error) {
	if fourcc == "" {
		fourcc = DefaultFourCC
	}
	if len(fourcc) != 4 {
		return nil, fmt.Errorf("%w: fourcc %q must be four characters", ErrUnwritableDestination, fourcc)
	}
	if props.Width <= 0 || props.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid frame size %dx%d", ErrUnwritableDestination, props.Width, props.Height)
	}
	if props.FPS <= 0 {
		props.FPS = DefaultFPS
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s does not exist", ErrUnwritableDestination, dir)
	}

	log.WithFields(props.LogFields()).WithFields(logrus.Fields{
		"filepath": path,
		"fourcc":   fourcc,
	}).Debug("Creating video writer")

	writer, err := gocv.VideoWriterFile(path, fourcc, props.FPS, props.Width, props.Height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("%w: %s: encoder %s unavailable", ErrUnwritableDestination, path, fourcc)
	}

	return &VideoSink{path: path, writer: writer, props: props}, nil
}

// Path returns the output file.
func (s *VideoSink) Path() string { return s.path }

// Frames returns the number of frames written so far.
func (s *VideoSink) Frames() int { return s.frames }

// Write appends one frame. Frames must match the sink's size.
func (s *VideoSink) Write(frame gocv.Mat) error {
	if s.closed {
		return fmt.Errorf("%w: %s: sink closed", ErrUnwritableDestination, s.path)
	}
	if frame.Cols() != s.props.Width || frame.Rows() != s.props.Height {
		return fmt.Errorf("%w: frame %dx%d does not match output %dx%d", ErrUnwritableDestination,
			frame.Cols(), frame.Rows(), s.props.Width, s.props.Height)
	}
	if err := s.writer.Write(frame); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, s.path, err)
	}
	s.frames++
	return nil
}

// Close finalizes the container. It is safe to call more than once.
func (s *VideoSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, s.path, err)
	}
	log.WithFields(logrus.Fields{
		"filepath": s.path,
		"frames":   s.frames,
	}).Info("Video written")
	return nil
}

// Discard closes the writer and removes the partial file.
func (s *VideoSink) Discard() error {
	closeErr := s.Close()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove partial output %s: %w", s.path, err)
	}
	log.WithField("filepath", s.path).Warn("Partial output discarded")
	return closeErr
}
