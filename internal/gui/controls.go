// Adjustment sliders: one per pipeline parameter
package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"video-adjustment-tool/internal/core"
)

// AdjustmentPanel holds the seven parameter sliders. Slider positions are mirrored
// into a guarded map so the preview goroutine can snapshot them.
type AdjustmentPanel struct {
	logger logrus.FieldLogger

	mu     sync.Mutex
	values core.SliderValues

	sliders   map[string]*widget.Slider
	labels    map[string]*widget.Label
	container *fyne.Container
	resetBtn  *widget.Button

	onChanged func()
}

func NewAdjustmentPanel(logger logrus.FieldLogger) *AdjustmentPanel {
	ap := &AdjustmentPanel{
		logger:  logger,
		values:  core.DefaultSliderValues(),
		sliders: make(map[string]*widget.Slider),
		labels:  make(map[string]*widget.Label),
	}
	ap.initializeUI()
	return ap
}

func (ap *AdjustmentPanel) initializeUI() {
	ap.container = container.NewVBox()

	for _, spec := range core.Specs() {
		spec := spec
		slider := widget.NewSlider(float64(spec.Min), float64(spec.Max))
		slider.Step = 1
		slider.SetValue(float64(spec.Default))

		valueLabel := widget.NewLabel(fmt.Sprintf("%d", spec.Default))
		slider.OnChanged = func(value float64) {
			position := int(value)
			valueLabel.SetText(fmt.Sprintf("%d", position))
			ap.set(spec.Name, position)
		}

		ap.sliders[spec.Name] = slider
		ap.labels[spec.Name] = valueLabel
		ap.container.Add(container.NewBorder(nil, nil, widget.NewLabel(spec.Label), valueLabel, slider))
	}

	ap.resetBtn = widget.NewButton("Reset", ap.Reset)
	ap.container.Add(widget.NewSeparator())
	ap.container.Add(ap.resetBtn)
}

func (ap *AdjustmentPanel) set(name string, position int) {
	ap.mu.Lock()
	changed := ap.values[name] != position
	ap.values[name] = position
	ap.mu.Unlock()

	if changed && ap.onChanged != nil {
		ap.onChanged()
	}
}

// Values returns a copy of the slider positions.
func (ap *AdjustmentPanel) Values() core.SliderValues {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	out := make(core.SliderValues, len(ap.values))
	for k, v := range ap.values {
		out[k] = v
	}
	return out
}

// Snapshot builds the parameter set for the current slider positions. It is safe
// to call from any goroutine.
func (ap *AdjustmentPanel) Snapshot() core.ParameterSet {
	params, err := core.FromSliderValues(ap.Values())
	if err != nil {
		// sliders cannot leave their range; keep going with the nearest valid set
		ap.logger.WithError(err).Warn("Slider values out of range")
		v := ap.Values()
		s := func(name string) float64 {
			spec, _ := core.SpecFor(name)
			return spec.Value(v[name])
		}
		return core.ClampParameterSet(s(core.FieldColorCorrection), s(core.FieldBrightness),
			s(core.FieldContrast), v[core.FieldHueShift], s(core.FieldSharpness),
			s(core.FieldSaturation), v[core.FieldRotation])
	}
	return params
}

// Apply moves the sliders to values; fields not present keep their position.
// Must run on the fyne thread.
func (ap *AdjustmentPanel) Apply(values core.SliderValues) {
	for name, position := range values {
		if slider, ok := ap.sliders[name]; ok {
			slider.SetValue(float64(position))
		}
	}
}

// Reset restores the default positions.
func (ap *AdjustmentPanel) Reset() {
	ap.Apply(core.DefaultSliderValues())
	ap.logger.Debug("Adjustments reset")
}

func (ap *AdjustmentPanel) GetContainer() fyne.CanvasObject {
	return ap.container
}

// SetCallbacks registers the change notification, called on the fyne thread.
func (ap *AdjustmentPanel) SetCallbacks(onChanged func()) {
	ap.onChanged = onChanged
}
