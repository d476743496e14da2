package fields

import (
	"fmt"
	"slices"

	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// Checkbox toggles a boolean value.
func Checkbox(p registry.FieldProps) *render.Node {
	checked, _ := p.Value.(bool)

	box := render.New(render.KindCheckbox, p.Key+"/box", map[string]any{
		"checked": checked,
		"label":   p.Field.Label,
		"color":   p.Colors.Primary,
	}).WithStyle("checkboxRow")
	box.OnPress = func() { emit(p, !checked) }

	return render.New(render.KindView, p.Key, nil, box).WithStyle("fieldContainer")
}

// Dropdown selects a single option from the field's options.
func Dropdown(p registry.FieldProps) *render.Node {
	selected, _ := p.Value.(string)

	dropdown := render.New(render.KindDropdown, p.Key+"/select", map[string]any{
		"options":  p.Field.Options,
		"selected": selected,
	}).WithStyle("dropdown")
	dropdown.OnChange = func(v any) {
		s, ok := v.(string)
		if !ok || !slices.Contains(p.Field.Options, s) {
			return
		}
		emit(p, s)
	}

	return render.New(render.KindView, p.Key, nil, label(p), dropdown).WithStyle("fieldContainer")
}

// MCQ is a multi-select list; pressing an option toggles its membership.
func MCQ(p registry.FieldProps) *render.Node {
	current := Selections(p.Value)

	options := make([]*render.Node, 0, len(p.Field.Options))
	for i, opt := range p.Field.Options {
		option := render.New(render.KindOption, fmt.Sprintf("%s/option/%d", p.Key, i), map[string]any{
			"label":    opt,
			"selected": slices.Contains(current, opt),
			"color":    p.Colors.Primary,
		}).WithStyle("mcqRow")
		option.OnPress = func() { emit(p, toggle(current, opt)) }
		options = append(options, option)
	}

	return render.New(render.KindView, p.Key, nil,
		label(p),
		render.New(render.KindView, p.Key+"/options", nil, options...),
	).WithStyle("fieldContainer")
}

// Selections normalises a stored multi-select value.
func Selections(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func toggle(current []string, opt string) []string {
	if slices.Contains(current, opt) {
		return slices.DeleteFunc(slices.Clone(current), func(s string) bool { return s == opt })
	}
	return append(slices.Clone(current), opt)
}
