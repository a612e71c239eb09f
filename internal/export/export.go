// Package export runs the frame pipeline over a whole video and writes the result
// in source order.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"video-adjustment-tool/internal/core"
	vio "video-adjustment-tool/internal/io"
)

// Source yields decoded frames in decode order.
type Source interface {
	Props() vio.Props
	Read(dst *gocv.Mat) bool
}

// Sink receives processed frames. Close finalizes the output.
type Sink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// Discarder is implemented by sinks that can remove partial output.
type Discarder interface {
	Discard() error
}

// Options tunes an export run. The zero value is a synchronous run with the
// standard pipeline.
type Options struct {
	// Workers > 1 processes frames concurrently; output order is unchanged.
	Workers int
	// FourCC selects the codec for File.
	FourCC string
	// Progress is called after each written frame. total is the container's
	// frame count estimate and may be 0.
	Progress func(done, total int)
	Logger   logrus.FieldLogger
	Pipeline *core.Pipeline
}

// Result summarizes a finished run.
type Result struct {
	RunID   string
	Frames  int
	Elapsed time.Duration
	FPS     float64
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Pipeline == nil {
		o.Pipeline = core.NewPipeline(core.WithLogger(o.Logger))
	}
	return o
}

type run struct {
	ctx       context.Context
	src       Source
	sink      Sink
	params    core.ParameterSet
	opts      Options
	logger    logrus.FieldLogger
	total     int
	done      int
	sometimes rate.Sometimes
}

// Run processes every frame of src with params and writes the results to sink in
// decode order. The sink is closed on success, including when src yields no
// frames, and discarded on failure.
func Run(ctx context.Context, src Source, sink Sink, params core.ParameterSet, opts Options) (Result, error) {
	opts = opts.withDefaults()
	id := uuid.NewString()
	start := time.Now()

	r := &run{
		ctx:       ctx,
		src:       src,
		sink:      sink,
		params:    params,
		opts:      opts,
		total:     src.Props().FrameCount,
		sometimes: rate.Sometimes{First: 1, Interval: time.Second},
		logger: opts.Logger.WithFields(logrus.Fields{
			"function": "export.Run",
			"run_id":   id,
		}),
	}

	r.logger.WithFields(params.LogFields()).WithFields(logrus.Fields{
		"workers":      opts.Workers,
		"total_frames": r.total,
	}).Info("Export started")

	var err error
	if opts.Workers == 1 {
		err = r.sequential()
	} else {
		err = r.parallel()
	}

	result := Result{RunID: id, Frames: r.done, Elapsed: time.Since(start)}
	if secs := result.Elapsed.Seconds(); secs > 0 {
		result.FPS = float64(result.Frames) / secs
	}

	if err != nil {
		r.abort()
		r.logger.WithError(err).WithField("frames", r.done).Error("Export failed")
		return result, err
	}

	if err := sink.Close(); err != nil {
		r.logger.WithError(err).Error("Finalizing output failed")
		return result, fmt.Errorf("finalize output: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"frames":     result.Frames,
		"elapsed_ms": result.Elapsed.Milliseconds(),
		"fps":        result.FPS,
	}).Info("Export finished")
	return result, nil
}

func (r *run) abort() {
	var err error
	if d, ok := r.sink.(Discarder); ok {
		err = d.Discard()
	} else {
		err = r.sink.Close()
	}
	if err != nil {
		r.logger.WithError(err).Warn("Cleanup after failed export")
	}
}

func (r *run) written() {
	r.done++
	if r.opts.Progress != nil {
		r.opts.Progress(r.done, r.total)
	}
	r.sometimes.Do(func() {
		r.logger.WithFields(logrus.Fields{
			"done":  r.done,
			"total": r.total,
		}).Info("Export progress")
	})
}

func (r *run) sequential() error {
	frame := gocv.NewMat()
	defer frame.Close()

	for index := 0; ; index++ {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if !r.src.Read(&frame) {
			return nil
		}

		out, err := r.opts.Pipeline.Process(frame, r.params)
		if err != nil {
			out.Close()
			return fmt.Errorf("frame %d: %w", index, err)
		}
		err = r.sink.Write(out)
		out.Close()
		if err != nil {
			return fmt.Errorf("write frame %d: %w", index, err)
		}
		r.written()
	}
}

type job struct {
	index int
	frame gocv.Mat
}

// parallel decodes on one goroutine, processes on opts.Workers goroutines and
// writes on one goroutine, holding back early frames until their predecessors are
// written. At most 2*Workers frames are in flight.
func (r *run) parallel() error {
	window := r.opts.Workers * 2
	tokens := make(chan struct{}, window)
	jobs := make(chan job, r.opts.Workers)
	results := make(chan job, window)

	g, ctx := errgroup.WithContext(r.ctx)

	g.Go(func() error {
		defer close(jobs)
		for index := 0; ; index++ {
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}

			frame := gocv.NewMat()
			if !r.src.Read(&frame) {
				frame.Close()
				<-tokens
				return nil
			}

			select {
			case jobs <- job{index: index, frame: frame}:
			case <-ctx.Done():
				frame.Close()
				return ctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				out, err := r.opts.Pipeline.Process(j.frame, r.params)
				j.frame.Close()
				if err != nil {
					out.Close()
					return fmt.Errorf("frame %d: %w", j.index, err)
				}
				select {
				case results <- job{index: j.index, frame: out}:
				case <-ctx.Done():
					out.Close()
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]gocv.Mat)
		defer func() {
			for _, m := range pending {
				m.Close()
			}
		}()

		next := 0
		for res := range results {
			pending[res.index] = res.frame
			for {
				m, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				err := r.sink.Write(m)
				m.Close()
				if err != nil {
					return fmt.Errorf("write frame %d: %w", next, err)
				}
				<-tokens
				r.written()
				next++
			}
		}
		return ctx.Err()
	})

	err := g.Wait()

	// release frames stranded in channels after a failure
	for j := range jobs {
		j.frame.Close()
	}
	for res := range results {
		res.frame.Close()
	}
	return err
}
