// Package fields holds the built-in form field editors.
package fields

import (
	"errors"

	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// Field type tags served by this package.
const (
	TypeSlider   = "slider"
	TypeCheckbox = "checkbox"
	TypeDropdown = "dropdown"
	TypeMCQ      = "mcq"
)

// RegisterDefaults registers every built-in editor on reg.
func RegisterDefaults(reg *registry.FieldRegistry) error {
	return errors.Join(
		reg.Register(TypeSlider, Slider),
		reg.Register(TypeCheckbox, Checkbox),
		reg.Register(TypeDropdown, Dropdown),
		reg.Register(TypeMCQ, MCQ),
	)
}

func label(p registry.FieldProps) *render.Node {
	if p.Field.Label == "" {
		return nil
	}
	return render.New(render.KindText, p.Key+"/label", map[string]any{
		"text":  p.Field.Label,
		"color": p.Colors.Text,
	}).WithStyle("label")
}

func emit(p registry.FieldProps, v any) {
	if p.OnChange != nil {
		p.OnChange(v)
	}
}
