// Menu handler for file actions
package gui

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	vio "video-adjustment-tool/internal/io"
)

// MenuHandler builds the main menu and runs the file dialogs.
type MenuHandler struct {
	window  fyne.Window
	logger  logrus.FieldLogger
	presets []string

	onOpen     func(path string)
	onExport   func(path string)
	onSnapshot func(path string)
	onPreset   func(name string)
}

func NewMenuHandler(window fyne.Window, presets []string, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window:  window,
		presets: presets,
		logger:  logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Video...", mh.OpenVideo),
		fyne.NewMenuItem("Export Video...", mh.ExportVideo),
		fyne.NewMenuItem("Save Frame...", mh.SaveFrame),
	)

	menus := []*fyne.Menu{fileMenu}

	if len(mh.presets) > 0 {
		items := make([]*fyne.MenuItem, 0, len(mh.presets))
		for _, name := range mh.presets {
			name := name
			items = append(items, fyne.NewMenuItem(name, func() {
				if mh.onPreset != nil {
					mh.onPreset(name)
				}
			}))
		}
		menus = append(menus, fyne.NewMenu("Presets", items...))
	}

	menus = append(menus, fyne.NewMenu("Help", fyne.NewMenuItem("About", mh.showAbout)))
	return fyne.NewMainMenu(menus...)
}

func (mh *MenuHandler) OpenVideo() {
	mh.logger.Info("Opening file dialog for video selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if mh.onOpen != nil {
			mh.onOpen(path)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(vio.SupportedVideoFormats()))
	fileDialog.Show()
}

func (mh *MenuHandler) ExportVideo() {
	mh.saveDialog("adjusted.mp4", vio.SupportedVideoFormats(), mh.onExport)
}

func (mh *MenuHandler) SaveFrame() {
	mh.saveDialog("frame.png", []string{".png", ".jpg", ".jpeg"}, mh.onSnapshot)
}

func (mh *MenuHandler) saveDialog(defaultName string, extensions []string, then func(string)) {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// the dialog creates an empty file; the writers below recreate it
		writer.Close()

		if !hasExtension(path, extensions) {
			mh.showError("Unsupported Format", fmt.Errorf("%s: expected one of %s",
				filepath.Base(path), strings.Join(extensions, ", ")))
			return
		}
		if then != nil {
			then(path)
		}
	}, mh.window)

	fileDialog.SetFileName(defaultName)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(extensions))
	fileDialog.Show()
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel(fmt.Sprintf("%s %s", AppName, AppVersion)),
		widget.NewSeparator(),
		widget.NewLabel("Color correction, brightness, contrast, hue,"),
		widget.NewLabel("sharpness, saturation and rotation for video."),
		widget.NewLabel("Preview and export share one frame pipeline."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne v2.6 and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(360, 220))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}

func (mh *MenuHandler) SetCallbacks(onOpen, onExport, onSnapshot, onPreset func(string)) {
	mh.onOpen = onOpen
	mh.onExport = onExport
	mh.onSnapshot = onSnapshot
	mh.onPreset = onPreset
}
