package fields

import (
	"math"
	"strconv"
	"strings"

	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// SliderValue reads the current numeric value. Strings are parsed; a missing
// or zero value falls back to the field minimum, then 0.
func SliderValue(p registry.FieldProps) float64 {
	switch v := p.Value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case float64:
		if v != 0 {
			return v
		}
	case int:
		if v != 0 {
			return float64(v)
		}
	}
	if p.Field.Min != nil {
		return *p.Field.Min
	}
	return 0
}

// Slider is a stepped numeric editor. Changes are emitted as the rounded
// integer in string form.
func Slider(p registry.FieldProps) *render.Node {
	value := SliderValue(p)

	props := map[string]any{
		"step":                  1,
		"minimumTrackTintColor": p.Colors.Primary,
		"maximumTrackTintColor": p.Colors.Border,
		"thumbTintColor":        p.Colors.Primary,
	}
	if !math.IsNaN(value) {
		props["value"] = value
	}
	if p.Field.Min != nil {
		props["minimumValue"] = *p.Field.Min
	}
	if p.Field.Max != nil {
		props["maximumValue"] = *p.Field.Max
	}

	slider := render.New(render.KindSlider, p.Key+"/slider", props).WithStyle("slider")
	slider.OnChange = func(v any) {
		f, ok := toFloat(v)
		if !ok {
			return
		}
		emit(p, strconv.FormatInt(int64(math.Round(f)), 10))
	}

	readout := ""
	if !math.IsNaN(value) {
		readout = strconv.FormatInt(int64(math.Round(value)), 10)
	}

	return render.New(render.KindView, p.Key, nil,
		label(p),
		slider,
		render.New(render.KindText, p.Key+"/value", map[string]any{
			"text":      readout,
			"color":     p.Colors.Text,
			"textAlign": "center",
		}).WithStyle("label"),
	).WithStyle("fieldContainer")
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
