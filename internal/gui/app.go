// Main application window: preview, adjustment sliders, playback and export
package gui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"video-adjustment-tool/internal/config"
	"video-adjustment-tool/internal/core"
	"video-adjustment-tool/internal/export"
	vio "video-adjustment-tool/internal/io"
	"video-adjustment-tool/internal/preview"
)

const (
	AppName    = "Video Adjustment Tool"
	AppID      = "com.videoadjust.tool"
	AppVersion = "1.0.0"
)

// Application represents the main window and its collaborators
type Application struct {
	app       fyne.App
	window    fyne.Window
	logger    *logrus.Logger
	cfg       *config.Config
	debugMode bool

	// Core components
	pipeline *core.Pipeline
	preview  *preview.Controller

	// GUI components
	canvas      *PreviewCanvas
	adjustments *AdjustmentPanel
	info        *InfoPanel
	status      *StatusManager
	menuHandler *MenuHandler
	toolbar     *Toolbar

	cancelExport context.CancelFunc
}

func NewApplication(app fyne.App, cfg *config.Config, logger *logrus.Logger, debugMode bool) *Application {
	window := app.NewWindow(AppName)
	window.Resize(fyne.NewSize(1280, 800))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		cfg:       cfg,
		debugMode: debugMode,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeCore() {
	opts := []core.Option{core.WithLogger(a.logger)}
	if a.debugMode {
		opts = append(opts, core.WithTracer(core.NewTracer(a.logger, true)))
	}
	a.pipeline = core.NewPipeline(opts...)
	a.preview = preview.NewController(
		preview.WithPipeline(a.pipeline),
		preview.WithScale(a.cfg.Preview.Scale),
		preview.WithLogger(a.logger),
	)
	vio.SetLogger(a.logger)
}

func (a *Application) initializeGUI() {
	a.canvas = NewPreviewCanvas()
	a.adjustments = NewAdjustmentPanel(a.logger)
	a.info = NewInfoPanel(a.debugMode)
	a.status = NewStatusManager()
	a.menuHandler = NewMenuHandler(a.window, a.cfg.PresetNames(), a.logger)
	a.toolbar = NewToolbar(a.logger)
}

func (a *Application) setupLayout() {
	controls := container.NewVScroll(container.NewVBox(
		widget.NewCard("Adjustments", "", a.adjustments.GetContainer()),
		a.info.GetContainer(),
	))

	center := container.NewBorder(a.toolbar.GetContainer(), a.status.GetWidget(), nil, nil,
		container.NewPadded(a.canvas.GetContainer()))

	split := container.NewHSplit(center, controls)
	split.SetOffset(0.7)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(split)
}

func (a *Application) setupCallbacks() {
	a.toolbar.SetCallbacks(
		a.menuHandler.OpenVideo,
		a.menuHandler.ExportVideo,
		a.adjustments.Reset,
		a.togglePlay,
	)

	a.adjustments.SetCallbacks(func() {
		// while playing the ticker picks up the change
		if !a.preview.Playing() {
			a.refreshPreview()
		}
	})

	a.menuHandler.SetCallbacks(
		// onOpen
		func(path string) {
			if err := a.LoadVideo(path); err != nil {
				a.showError("Failed to Load Video", err)
			}
		},
		// onExport
		a.startExport,
		// onSnapshot
		func(path string) {
			if err := a.SaveFrame(path); err != nil {
				a.showError("Failed to Save Frame", err)
			}
		},
		// onPreset
		func(name string) {
			values, err := a.cfg.SliderValues(name)
			if err != nil {
				a.showError("Preset", err)
				return
			}
			a.adjustments.Apply(values)
			a.status.ShowInfo(fmt.Sprintf("Preset: %s", name))
		},
	)
}

// LoadVideo caches the first frame of path for preview.
func (a *Application) LoadVideo(path string) error {
	a.preview.Pause()
	a.setPlaying(false)

	if err := a.preview.Load(path); err != nil {
		return err
	}

	_, props := a.preview.Source()
	a.canvas.SetTitle(filepath.Base(path))
	a.info.ShowSource(path, props)
	a.info.Clear()
	a.status.ShowSuccess(fmt.Sprintf("Loaded %s", filepath.Base(path)))
	a.toolbar.SetVideoLoaded(true)
	a.refreshPreview()
	return nil
}

func (a *Application) refreshPreview() {
	params := a.adjustments.Snapshot()
	img, err := a.preview.Render(params)
	if err != nil {
		a.reportRenderError(err)
		return
	}
	a.canvas.Update(img)

	if m, err := a.preview.Measure(params); err == nil {
		a.info.UpdateMetrics(m)
	}
	a.info.UpdateTimings(a.pipeline.Tracer().Stats())
}

func (a *Application) reportRenderError(err error) {
	if errors.Is(err, core.ErrEmptyFrame) {
		a.status.ShowWarning("Nothing to show: open a video first")
		return
	}
	a.logger.WithError(err).Error("Preview render failed")
	a.status.ShowError(err)
}

func (a *Application) togglePlay() {
	if a.preview.Playing() {
		a.preview.Pause()
		a.setPlaying(false)
		return
	}

	interval := time.Duration(a.cfg.Preview.IntervalMS) * time.Millisecond
	a.preview.Play(interval, a.adjustments.Snapshot,
		func(img image.Image) {
			fyne.Do(func() { a.canvas.Update(img) })
		},
		func(err error) {
			fyne.Do(func() { a.reportRenderError(err) })
		},
	)
	a.setPlaying(true)
}

func (a *Application) setPlaying(playing bool) {
	a.toolbar.SetPlaying(playing)
}

// SaveFrame writes the adjusted first frame at full resolution.
func (a *Application) SaveFrame(path string) error {
	frame, err := a.preview.RenderFrame(a.adjustments.Snapshot())
	defer frame.Close()
	if err != nil {
		return err
	}
	if err := vio.SaveStill(frame, path); err != nil {
		return err
	}
	a.status.ShowSuccess(fmt.Sprintf("Saved frame to %s", filepath.Base(path)))
	return nil
}

func (a *Application) startExport(outPath string) {
	inPath, props := a.preview.Source()
	if inPath == "" {
		a.showError("Export", fmt.Errorf("nothing to export: %w", core.ErrEmptyFrame))
		return
	}

	params := a.adjustments.Snapshot()
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelExport = cancel

	bar := widget.NewProgressBar()
	label := widget.NewLabel(fmt.Sprintf("Exporting %s", filepath.Base(inPath)))
	progress := dialog.NewCustom("Export", "Cancel", container.NewVBox(label, bar), a.window)
	progress.SetOnClosed(cancel)
	progress.Resize(fyne.NewSize(420, 140))
	progress.Show()
	a.toolbar.SetExporting(true)

	opts := export.Options{
		Workers:  a.cfg.Export.Workers,
		FourCC:   a.cfg.Export.FourCC,
		Logger:   a.logger,
		Pipeline: a.pipeline,
		Progress: func(done, total int) {
			fyne.Do(func() {
				if total > 0 {
					bar.SetValue(float64(done) / float64(total))
				}
				label.SetText(fmt.Sprintf("Frame %d of %d", done, max(total, done)))
			})
		},
	}

	a.logger.WithFields(params.LogFields()).WithFields(props.LogFields()).Info("Export requested")

	go func() {
		result, err := export.File(ctx, inPath, outPath, params, opts)
		fyne.Do(func() {
			a.cancelExport = nil
			a.toolbar.SetExporting(false)
			progress.Hide()

			switch {
			case errors.Is(err, context.Canceled):
				a.status.ShowWarning("Export cancelled")
			case err != nil:
				a.showError("Export Failed", err)
			default:
				a.showInfo("Export Finished", fmt.Sprintf("%d frames written to\n%s\n(%.1f fps)",
					result.Frames, outPath, result.FPS))
				a.status.ShowSuccess(fmt.Sprintf("Exported %s", filepath.Base(outPath)))
			}
		})
	}()
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	if a.cancelExport != nil {
		a.cancelExport()
	}
	a.preview.Close()

	for _, s := range a.pipeline.Tracer().Stats() {
		a.logger.WithFields(logrus.Fields{
			"step":    s.Name,
			"calls":   s.Calls,
			"mean_ms": float64(s.Mean().Microseconds()) / 1000.0,
			"max_ms":  float64(s.Max.Microseconds()) / 1000.0,
		}).Debug("Pipeline step timing")
	}
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.status.ShowError(err)
}

func (a *Application) showInfo(title, message string) {
	a.logger.WithField("message", message).Info(title)
	dialog.ShowInformation(title, message, a.window)
}
