package export

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"video-adjustment-tool/internal/core"
	vio "video-adjustment-tool/internal/io"
)

// graySource yields n flat gray frames whose level encodes the frame index.
type graySource struct {
	n      int
	next   int
	badAt  int
	width  int
	height int
}

func newGraySource(n int) *graySource {
	return &graySource{n: n, badAt: -1, width: 8, height: 6}
}

func (s *graySource) Props() vio.Props {
	return vio.Props{Width: s.width, Height: s.height, FPS: 25, FrameCount: s.n}
}

func (s *graySource) Read(dst *gocv.Mat) bool {
	if s.next >= s.n {
		return false
	}
	var m gocv.Mat
	if s.next == s.badAt {
		m = gocv.NewMatWithSize(s.height, s.width, gocv.MatTypeCV8U)
	} else {
		level := float64(s.next % 256)
		m = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(level, level, level, 0), s.height, s.width, gocv.MatTypeCV8UC3)
	}
	defer m.Close()
	m.CopyTo(dst)
	s.next++
	return true
}

type recordingSink struct {
	mu        sync.Mutex
	levels    []int
	failAt    int
	closed    int
	discarded bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failAt: -1}
}

var errDiskFull = errors.New("disk full")

func (s *recordingSink) Write(frame gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.levels) == s.failAt {
		return errDiskFull
	}
	s.levels = append(s.levels, int(frame.ToBytes()[0]))
	return nil
}

func (s *recordingSink) Close() error {
	s.closed++
	return nil
}

func (s *recordingSink) Discard() error {
	s.discarded = true
	return s.Close()
}

func quietOptions(workers int) Options {
	logger, _ := logtest.NewNullLogger()
	return Options{Workers: workers, Logger: logger}
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestRunWritesEveryFrameInOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 4, 8} {
		src := newGraySource(40)
		sink := newRecordingSink()

		var calls, lastDone, lastTotal int
		opts := quietOptions(workers)
		opts.Progress = func(done, total int) {
			calls++
			lastDone, lastTotal = done, total
		}

		res, err := Run(context.Background(), src, sink, core.Neutral(), opts)
		require.NoError(t, err, "workers=%d", workers)

		assert.Equal(t, indices(40), sink.levels, "workers=%d", workers)
		assert.Equal(t, 40, res.Frames)
		assert.Equal(t, 1, sink.closed)
		assert.False(t, sink.discarded)
		assert.Equal(t, 40, calls)
		assert.Equal(t, 40, lastDone)
		assert.Equal(t, 40, lastTotal)

		_, err = uuid.Parse(res.RunID)
		assert.NoError(t, err)
	}
}

func TestRunWithZeroFramesFinalizesSink(t *testing.T) {
	for _, workers := range []int{1, 3} {
		sink := newRecordingSink()
		res, err := Run(context.Background(), newGraySource(0), sink, core.Neutral(), quietOptions(workers))
		require.NoError(t, err)

		assert.Zero(t, res.Frames)
		assert.Empty(t, sink.levels)
		assert.Equal(t, 1, sink.closed)
		assert.False(t, sink.discarded)
	}
}

func TestRunAppliesOneParameterSetToAllFrames(t *testing.T) {
	params, err := core.NewParameterSet(0, 0.1, 0, 0, 0, 0, 0)
	require.NoError(t, err)

	sink := newRecordingSink()
	_, err = Run(context.Background(), newGraySource(5), sink, params, quietOptions(2))
	require.NoError(t, err)

	// +25.5 rounds to even on .5
	for i, level := range sink.levels {
		assert.InDelta(t, i+26, level, 1, "frame %d", i)
	}
}

func TestRunWriteFailureDiscardsOutput(t *testing.T) {
	for _, workers := range []int{1, 4} {
		sink := newRecordingSink()
		sink.failAt = 3

		res, err := Run(context.Background(), newGraySource(20), sink, core.Neutral(), quietOptions(workers))
		require.Error(t, err)
		assert.ErrorIs(t, err, errDiskFull)
		assert.Contains(t, err.Error(), "write frame 3")

		assert.Equal(t, 3, res.Frames)
		assert.Equal(t, []int{0, 1, 2}, sink.levels)
		assert.True(t, sink.discarded, "workers=%d", workers)
	}
}

func TestRunProcessingFailureAborts(t *testing.T) {
	for _, workers := range []int{1, 4} {
		src := newGraySource(10)
		src.badAt = 4
		sink := newRecordingSink()

		_, err := Run(context.Background(), src, sink, core.Neutral(), quietOptions(workers))
		assert.ErrorIs(t, err, core.ErrUnsupportedFrame)
		assert.Contains(t, err.Error(), "frame 4")
		assert.True(t, sink.discarded)
		assert.LessOrEqual(t, len(sink.levels), 4)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 2} {
		sink := newRecordingSink()
		_, err := Run(ctx, newGraySource(10), sink, core.Neutral(), quietOptions(workers))
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, sink.discarded)
	}
}

func TestRunClosesSinkWithoutDiscard(t *testing.T) {
	sink := newRecordingSink()
	sink.failAt = 0

	_, err := Run(context.Background(), newGraySource(2), closeOnly{sink}, core.Neutral(), quietOptions(1))
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, sink.closed)
	assert.False(t, sink.discarded)
}

// closeOnly hides Discard.
type closeOnly struct {
	inner *recordingSink
}

func (c closeOnly) Write(frame gocv.Mat) error { return c.inner.Write(frame) }
func (c closeOnly) Close() error               { return c.inner.Close() }

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := File(context.Background(), filepath.Join(dir, "a.mp4"), filepath.Join(dir, "a.mp4"), core.Neutral(), Options{})
	assert.ErrorIs(t, err, vio.ErrUnwritableDestination)

	_, err = File(context.Background(), filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "b.mp4"), core.Neutral(), Options{})
	assert.ErrorIs(t, err, vio.ErrUnreadableSource)
}
