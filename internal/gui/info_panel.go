// Info panel: source properties, difference metrics and step timings
package gui

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"video-adjustment-tool/internal/core"
	vio "video-adjustment-tool/internal/io"
)

// InfoPanel shows what is loaded and how far the adjusted frame is from it
type InfoPanel struct {
	container *fyne.Container

	sourceContent  *fyne.Container
	metricsContent *fyne.Container
	timingContent  *fyne.Container
	timingCard     *widget.Card
}

func NewInfoPanel(showTimings bool) *InfoPanel {
	panel := &InfoPanel{}
	panel.initializeUI(showTimings)
	return panel
}

func (ip *InfoPanel) initializeUI(showTimings bool) {
	ip.sourceContent = container.NewVBox(widget.NewLabel("No video loaded"))
	ip.metricsContent = container.NewVBox(widget.NewLabel("Metrics appear after the first render."))
	ip.timingContent = container.NewVBox(widget.NewLabel("No frames processed yet."))

	ip.container = container.NewVBox(
		widget.NewCard("Source", "", ip.sourceContent),
		widget.NewCard("Difference from source", "", ip.metricsContent),
	)
	if showTimings {
		ip.timingCard = widget.NewCard("Step timing", "", ip.timingContent)
		ip.container.Add(ip.timingCard)
	}
}

func (ip *InfoPanel) GetContainer() fyne.CanvasObject {
	return ip.container
}

func (ip *InfoPanel) ShowSource(path string, props vio.Props) {
	ip.sourceContent.RemoveAll()
	ip.sourceContent.Add(widget.NewLabel(filepath.Base(path)))
	ip.sourceContent.Add(widget.NewLabel(fmt.Sprintf("Size: %dx%d", props.Width, props.Height)))
	ip.sourceContent.Add(widget.NewLabel(fmt.Sprintf("Frame rate: %.2f fps", props.FPS)))
	if props.FrameCount > 0 {
		ip.sourceContent.Add(widget.NewLabel(fmt.Sprintf("Frames: %d", props.FrameCount)))
	}
	ip.sourceContent.Refresh()
}

func (ip *InfoPanel) UpdateMetrics(metrics map[string]float64) {
	ip.metricsContent.RemoveAll()

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ip.metricsContent.Add(metricRow(name, metrics[name]))
	}
	ip.metricsContent.Refresh()
}

func metricRow(name string, value float64) fyne.CanvasObject {
	var text string
	icon := theme.InfoIcon()

	switch name {
	case "psnr":
		if math.IsInf(value, 1) {
			text = "PSNR: identical"
			icon = theme.ConfirmIcon()
			break
		}
		text = fmt.Sprintf("PSNR: %.2f dB", value)
		if value < 20 {
			icon = theme.WarningIcon()
		}
	case "mse":
		text = fmt.Sprintf("MSE: %.2f", value)
	case "max_abs_diff":
		text = fmt.Sprintf("Max channel change: %.0f", value)
	default:
		text = fmt.Sprintf("%s: %.3f", name, value)
	}

	return container.NewHBox(widget.NewIcon(icon), widget.NewLabel(text))
}

func (ip *InfoPanel) UpdateTimings(stats []core.StepStats) {
	if ip.timingCard == nil {
		return
	}
	ip.timingContent.RemoveAll()
	for _, s := range stats {
		ip.timingContent.Add(widget.NewLabel(fmt.Sprintf("%s: %.2f ms avg, %.2f ms max",
			s.Name, float64(s.Mean().Microseconds())/1000, float64(s.Max.Microseconds())/1000)))
	}
	ip.timingContent.Refresh()
}

func (ip *InfoPanel) Clear() {
	ip.metricsContent.RemoveAll()
	ip.metricsContent.Add(widget.NewLabel("Metrics appear after the first render."))
	ip.metricsContent.Refresh()
}

// StatusManager handles status messages
type StatusManager struct {
	container *fyne.Container
	icon      *widget.Icon
	label     *widget.Label
}

func NewStatusManager() *StatusManager {
	sm := &StatusManager{
		icon:  widget.NewIcon(theme.InfoIcon()),
		label: widget.NewLabel("Open a video to start"),
	}
	sm.container = container.NewHBox(sm.icon, sm.label)
	return sm
}

func (sm *StatusManager) GetWidget() fyne.CanvasObject {
	return sm.container
}

func (sm *StatusManager) ShowInfo(message string) {
	sm.updateStatus(message, theme.InfoIcon())
}

func (sm *StatusManager) ShowSuccess(message string) {
	sm.updateStatus(message, theme.ConfirmIcon())
}

func (sm *StatusManager) ShowWarning(message string) {
	sm.updateStatus(message, theme.WarningIcon())
}

func (sm *StatusManager) ShowError(err error) {
	sm.updateStatus(fmt.Sprintf("Error: %s", err.Error()), theme.ErrorIcon())
}

func (sm *StatusManager) updateStatus(message string, icon fyne.Resource) {
	sm.icon.SetResource(icon)
	sm.label.SetText(message)
}
