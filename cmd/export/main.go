// Headless exporter: applies the adjustment pipeline to a whole video file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"video-adjustment-tool/internal/config"
	"video-adjustment-tool/internal/core"
	"video-adjustment-tool/internal/export"
	vio "video-adjustment-tool/internal/io"
)

type options struct {
	in       string
	out      string
	preset   string
	workers  int
	fourcc   string
	snapshot string
	debug    bool
	logFile  string
	config   string
	sliders  map[string]*int
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	opts := &options{sliders: make(map[string]*int)}
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)

	fs.StringVar(&opts.in, "in", "", "Input video file")
	fs.StringVar(&opts.out, "out", "", "Output video file")
	fs.StringVar(&opts.preset, "preset", "", "Preset name from the config file")
	fs.IntVar(&opts.workers, "workers", 0, "Frames processed in parallel (0 = config value)")
	fs.StringVar(&opts.fourcc, "fourcc", "", "Output codec FourCC (empty = config value)")
	fs.StringVar(&opts.snapshot, "snapshot", "", "Also save the adjusted first frame to this image file")
	fs.BoolVar(&opts.debug, "debug", false, "Verbose logging and per-step tracing")
	fs.StringVar(&opts.logFile, "log-file", "", "Also write logs to this rotating file")
	fs.StringVar(&opts.config, "config", "", "YAML configuration file")

	for _, spec := range core.Specs() {
		name := flagName(spec.Name)
		opts.sliders[spec.Name] = fs.Int(name, spec.Default,
			fmt.Sprintf("%s, slider units [%d, %d]", spec.Label, spec.Min, spec.Max))
	}

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.in == "" || opts.out == "" {
		return nil, fs, errors.New("--in and --out are required")
	}
	return opts, fs, nil
}

func flagName(field string) string {
	switch field {
	case core.FieldColorCorrection:
		return "cc"
	case core.FieldHueShift:
		return "hue"
	}
	return field
}

// sliderValues layers preset values under explicitly set flags.
func sliderValues(opts *options, fs *pflag.FlagSet, cfg *config.Config) (core.SliderValues, error) {
	values := core.DefaultSliderValues()
	if opts.preset != "" {
		preset, err := cfg.SliderValues(opts.preset)
		if err != nil {
			return nil, err
		}
		values = preset
	}
	for field, value := range opts.sliders {
		if fs.Changed(flagName(field)) {
			values[field] = *value
		}
	}
	return values, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		fs.PrintDefaults()
		return 2
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.workers > 0 {
		cfg.Export.Workers = opts.workers
	}
	if opts.fourcc != "" {
		cfg.Export.FourCC = opts.fourcc
	}

	logger, closer, err := config.NewLogger(cfg.Logging, opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer closer.Close()
	vio.SetLogger(logger)

	values, err := sliderValues(opts, fs, cfg)
	if err != nil {
		logger.WithError(err).Error("Invalid preset")
		return 1
	}
	params, err := core.FromSliderValues(values)
	if err != nil {
		logger.WithError(err).Error("Invalid adjustment values")
		return 1
	}

	pipelineOpts := []core.Option{core.WithLogger(logger)}
	if opts.debug {
		pipelineOpts = append(pipelineOpts, core.WithTracer(core.NewTracer(logger, false)))
	}
	pipeline := core.NewPipeline(pipelineOpts...)

	if opts.snapshot != "" {
		if err := saveSnapshot(pipeline, opts.in, opts.snapshot, params); err != nil {
			logger.WithError(err).Error("Snapshot failed")
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := newProgressBar()
	result, err := export.File(ctx, opts.in, opts.out, params, export.Options{
		Workers:  cfg.Export.Workers,
		FourCC:   cfg.Export.FourCC,
		Logger:   logger,
		Pipeline: pipeline,
		Progress: func(done, total int) {
			if total > 0 && bar.GetMax() != total {
				bar.ChangeMax(total)
			}
			_ = bar.Set(done)
		},
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		logger.WithError(err).Error("Export failed")
		return 1
	}

	for _, s := range pipeline.Tracer().Stats() {
		logger.WithFields(logrus.Fields{
			"step":    s.Name,
			"calls":   s.Calls,
			"mean_ms": float64(s.Mean().Microseconds()) / 1000.0,
			"max_ms":  float64(s.Max.Microseconds()) / 1000.0,
		}).Debug("Pipeline step timing")
	}

	fmt.Printf("%d frames written to %s in %s (%.1f fps, run %s)\n",
		result.Frames, opts.out, result.Elapsed.Round(1e6), result.FPS, result.RunID)
	return 0
}

func saveSnapshot(pipeline *core.Pipeline, in, out string, params core.ParameterSet) error {
	frame, _, err := vio.ReadFirstFrame(in)
	defer frame.Close()
	if err != nil {
		return err
	}

	processed, err := pipeline.Process(frame, params)
	defer processed.Close()
	if err != nil {
		return err
	}
	return vio.SaveStill(processed, out)
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
	)
}
