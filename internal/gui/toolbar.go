// Top toolbar: file actions on the left, playback on the right
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

type Toolbar struct {
	logger logrus.FieldLogger

	container *fyne.Container

	openBtn   *widget.Button
	exportBtn *widget.Button
	resetBtn  *widget.Button
	playBtn   *widget.Button

	playing bool

	// Callbacks
	onOpen   func()
	onExport func()
	onReset  func()
	onPlay   func()
}

func NewToolbar(logger logrus.FieldLogger) *Toolbar {
	tb := &Toolbar{logger: logger}
	tb.initializeUI()
	return tb
}

func (tb *Toolbar) initializeUI() {
	titleLabel := widget.NewLabelWithStyle(AppName, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	tb.openBtn = widget.NewButtonWithIcon("Open...", theme.FolderOpenIcon(), func() { tb.fire("open", tb.onOpen) })
	tb.openBtn.Importance = widget.HighImportance

	tb.exportBtn = widget.NewButtonWithIcon("Export...", theme.DocumentSaveIcon(), func() { tb.fire("export", tb.onExport) })
	tb.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() { tb.fire("reset", tb.onReset) })
	tb.playBtn = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), func() { tb.fire("play", tb.onPlay) })

	leftSection := container.NewHBox(
		titleLabel,
		widget.NewSeparator(),
		tb.openBtn,
		tb.exportBtn,
		tb.resetBtn,
	)

	tb.container = container.NewBorder(nil, nil, leftSection, tb.playBtn)
	tb.SetVideoLoaded(false)
}

func (tb *Toolbar) fire(action string, fn func()) {
	tb.logger.WithField("action", action).Debug("Toolbar action")
	if fn != nil {
		fn()
	}
}

func (tb *Toolbar) GetContainer() fyne.CanvasObject {
	return tb.container
}

func (tb *Toolbar) SetCallbacks(onOpen, onExport, onReset, onPlay func()) {
	tb.onOpen = onOpen
	tb.onExport = onExport
	tb.onReset = onReset
	tb.onPlay = onPlay
}

// SetVideoLoaded enables the actions that need a source video.
func (tb *Toolbar) SetVideoLoaded(loaded bool) {
	for _, btn := range []*widget.Button{tb.exportBtn, tb.resetBtn, tb.playBtn} {
		if loaded {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}

// SetExporting disables Open and Export while an export runs.
func (tb *Toolbar) SetExporting(exporting bool) {
	if exporting {
		tb.openBtn.Disable()
		tb.exportBtn.Disable()
		return
	}
	tb.openBtn.Enable()
	tb.exportBtn.Enable()
}

// SetPlaying flips the play button between Play and Pause.
func (tb *Toolbar) SetPlaying(playing bool) {
	tb.playing = playing
	if playing {
		tb.playBtn.SetText("Pause")
		tb.playBtn.SetIcon(theme.MediaPauseIcon())
		return
	}
	tb.playBtn.SetText("Play")
	tb.playBtn.SetIcon(theme.MediaPlayIcon())
}

func (tb *Toolbar) Playing() bool {
	return tb.playing
}
