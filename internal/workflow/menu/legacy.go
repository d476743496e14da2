package menu

import (
	"fmt"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// Field types rendered without a registered editor.
const (
	legacyFieldText  = "text"
	legacyFieldRadio = "radio"
)

// renderLegacy renders the built-in item types. ok is false for types it does
// not know.
func (a *Assembler) renderLegacy(v *View, key string, item models.ContentItem) (node *render.Node, ok bool) {
	colors := a.theme.Colors

	switch it := item.(type) {
	case models.ImageItem:
		if it.URL == "" {
			return nil, true
		}
		return render.New(render.KindImage, key, map[string]any{
			"uri":        it.URL,
			"resizeMode": "contain",
		}).WithStyle("image"), true

	case models.TitleItem:
		return render.New(render.KindText, key, map[string]any{
			"text":  it.Text,
			"color": colors.Text,
		}).WithStyle("title"), true

	case models.TextItem:
		return render.New(render.KindText, key, map[string]any{
			"text":  it.Text,
			"color": colors.Text,
		}).WithStyle("description"), true

	case models.ButtonItem:
		button := render.New(render.KindButton, key, map[string]any{
			"label": it.Label,
		}).WithStyle("button")
		button.OnPress = func() { v.dispatch(it.ActionID, it.InvitationLink) }
		return button, true

	case models.FormItem:
		fields := make([]*render.Node, 0, len(it.Fields))
		for i, field := range it.Fields {
			fields = append(fields, a.renderField(v, fmt.Sprintf("%s/field_%d", key, i), field))
		}
		return render.New(render.KindView, key, nil, fields...), true
	}
	return nil, false
}

func (a *Assembler) renderField(v *View, key string, field models.FormField) *render.Node {
	if field.Name == "" && field.Type == "" {
		return nil
	}

	value, _ := v.form.Get(field.Name)
	setValue := func(in any) { v.form.Set(field.Name, in) }

	if node, ok := a.fields.Render(field.Type, registry.FieldProps{
		Key:      key,
		Field:    field,
		Value:    value,
		OnChange: setValue,
		Styles:   a.theme.Styles,
		Colors:   a.theme.Colors,
	}); ok {
		return node
	}

	switch field.Type {
	case legacyFieldText:
		text := ""
		if value != nil {
			text = fmt.Sprint(value)
		}
		input := render.New(render.KindTextInput, key, map[string]any{
			"placeholder": field.Label,
			"value":       text,
		}).WithStyle("textInput")
		input.OnChange = func(in any) {
			if s, ok := in.(string); ok {
				setValue(s)
				return
			}
			setValue(fmt.Sprint(in))
		}
		return input

	case legacyFieldRadio:
		options := make([]*render.Node, 0, len(field.Options))
		for i, opt := range field.Options {
			option := render.New(render.KindRadio, fmt.Sprintf("%s/option_%d", key, i), map[string]any{
				"label":    opt,
				"selected": value == opt,
			}).WithStyle("radioButton")
			option.OnPress = func() { setValue(opt) }
			options = append(options, option)
		}
		label := render.New(render.KindText, key+"/label", map[string]any{
			"text":  field.Label,
			"color": a.theme.Colors.Text,
		}).WithStyle("formLabel")
		return render.New(render.KindView, key, nil, append([]*render.Node{label}, options...)...)
	}
	return nil
}
