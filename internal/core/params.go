// Adjustment parameters applied to every frame
package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrParameterOutOfRange is returned when a value falls outside its field's domain.
var ErrParameterOutOfRange = errors.New("parameter out of range")

// Field names, in slider order.
const (
	FieldColorCorrection = "color_correction"
	FieldBrightness      = "brightness"
	FieldContrast        = "contrast"
	FieldHueShift        = "hue_shift"
	FieldSharpness       = "sharpness"
	FieldSaturation      = "saturation"
	FieldRotation        = "rotation"
)

// ParameterSet is an immutable snapshot of the seven adjustment values.
// The zero value is the neutral (identity) set.
type ParameterSet struct {
	colorCorrection float64
	brightness      float64
	contrast        float64
	hueShift        int
	sharpness       float64
	saturation      float64
	rotation        int
}

// ParameterSpec describes one adjustment for UI and flag generation.
// Slider positions are integers; Scale converts a position into the field value.
type ParameterSpec struct {
	Name    string
	Label   string
	Min     int
	Max     int
	Default int
	Scale   float64
}

var parameterSpecs = []ParameterSpec{
	{Name: FieldColorCorrection, Label: "Color Correction (CC)", Min: 0, Max: 100, Default: 0, Scale: 100},
	{Name: FieldBrightness, Label: "Brightness", Min: -100, Max: 100, Default: 0, Scale: 100},
	{Name: FieldContrast, Label: "Contrast", Min: -100, Max: 100, Default: 0, Scale: 100},
	{Name: FieldHueShift, Label: "Hue", Min: 0, Max: 360, Default: 0, Scale: 1},
	{Name: FieldSharpness, Label: "Sharpness", Min: -100, Max: 100, Default: 0, Scale: 100},
	{Name: FieldSaturation, Label: "Saturation", Min: -100, Max: 100, Default: 0, Scale: 100},
	{Name: FieldRotation, Label: "Rotation", Min: 0, Max: 360, Default: 0, Scale: 1},
}

// Specs returns the slider description of every field in display order.
func Specs() []ParameterSpec {
	out := make([]ParameterSpec, len(parameterSpecs))
	copy(out, parameterSpecs)
	return out
}

// SpecFor returns the spec for a field name.
func SpecFor(name string) (ParameterSpec, bool) {
	for _, s := range parameterSpecs {
		if s.Name == name {
			return s, true
		}
	}
	return ParameterSpec{}, false
}

// Value converts a slider position into the field value.
func (s ParameterSpec) Value(position int) float64 {
	return float64(position) / s.Scale
}

// SliderValues holds raw slider positions keyed by field name.
type SliderValues map[string]int

// DefaultSliderValues returns the startup slider positions. They map to the
// neutral parameter set.
func DefaultSliderValues() SliderValues {
	v := make(SliderValues, len(parameterSpecs))
	for _, s := range parameterSpecs {
		v[s.Name] = s.Default
	}
	return v
}

// Neutral returns the identity parameter set.
func Neutral() ParameterSet {
	return ParameterSet{}
}

// NewParameterSet validates the seven values and builds a snapshot.
func NewParameterSet(colorCorrection, brightness, contrast float64, hueShift int,
	sharpness, saturation float64, rotation int) (ParameterSet, error) {

	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{FieldColorCorrection, colorCorrection, 0, 1},
		{FieldBrightness, brightness, -1, 1},
		{FieldContrast, contrast, -1, 1},
		{FieldHueShift, float64(hueShift), 0, 360},
		{FieldSharpness, sharpness, -1, 1},
		{FieldSaturation, saturation, -1, 1},
		{FieldRotation, float64(rotation), 0, 360},
	}
	for _, c := range checks {
		// NaN fails both comparisons, so test the in-range form.
		if !(c.value >= c.min && c.value <= c.max) {
			return ParameterSet{}, fmt.Errorf("%w: %s=%v not in [%v, %v]",
				ErrParameterOutOfRange, c.name, c.value, c.min, c.max)
		}
	}

	return ParameterSet{
		colorCorrection: colorCorrection,
		brightness:      brightness,
		contrast:        contrast,
		hueShift:        hueShift,
		sharpness:       sharpness,
		saturation:      saturation,
		rotation:        rotation,
	}, nil
}

// ClampParameterSet saturates each value into its domain instead of rejecting it.
func ClampParameterSet(colorCorrection, brightness, contrast float64, hueShift int,
	sharpness, saturation float64, rotation int) ParameterSet {
	return ParameterSet{
		colorCorrection: clampFloat(colorCorrection, 0, 1),
		brightness:      clampFloat(brightness, -1, 1),
		contrast:        clampFloat(contrast, -1, 1),
		hueShift:        clampInt(hueShift, 0, 360),
		sharpness:       clampFloat(sharpness, -1, 1),
		saturation:      clampFloat(saturation, -1, 1),
		rotation:        clampInt(rotation, 0, 360),
	}
}

// FromSliderValues maps slider positions to a parameter set. Missing fields take
// their default position.
func FromSliderValues(values SliderValues) (ParameterSet, error) {
	pos := func(name string) int {
		if v, ok := values[name]; ok {
			return v
		}
		s, _ := SpecFor(name)
		return s.Default
	}
	value := func(name string) float64 {
		s, _ := SpecFor(name)
		return s.Value(pos(name))
	}

	return NewParameterSet(
		value(FieldColorCorrection),
		value(FieldBrightness),
		value(FieldContrast),
		pos(FieldHueShift),
		value(FieldSharpness),
		value(FieldSaturation),
		pos(FieldRotation),
	)
}

func (p ParameterSet) ColorCorrection() float64 { return p.colorCorrection }
func (p ParameterSet) Brightness() float64      { return p.brightness }
func (p ParameterSet) Contrast() float64        { return p.contrast }
func (p ParameterSet) HueShift() int            { return p.hueShift }
func (p ParameterSet) Sharpness() float64       { return p.sharpness }
func (p ParameterSet) Saturation() float64      { return p.saturation }
func (p ParameterSet) Rotation() int            { return p.rotation }

// IsNeutral reports whether every field holds its identity value.
func (p ParameterSet) IsNeutral() bool {
	return p == ParameterSet{}
}

// LogFields returns the values as logrus fields.
func (p ParameterSet) LogFields() logrus.Fields {
	return logrus.Fields{
		FieldColorCorrection: p.colorCorrection,
		FieldBrightness:      p.brightness,
		FieldContrast:        p.contrast,
		FieldHueShift:        p.hueShift,
		FieldSharpness:       p.sharpness,
		FieldSaturation:      p.saturation,
		FieldRotation:        p.rotation,
	}
}

func (p ParameterSet) String() string {
	return fmt.Sprintf("cc=%.2f brightness=%.2f contrast=%.2f hue=%d sharpness=%.2f saturation=%.2f rotation=%d",
		p.colorCorrection, p.brightness, p.contrast, p.hueShift, p.sharpness, p.saturation, p.rotation)
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
