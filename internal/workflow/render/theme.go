package render

// Colors is the palette handed to renderers.
type Colors struct {
	Primary    string `json:"primary"`
	Text       string `json:"text"`
	Background string `json:"background"`
	Border     string `json:"border"`
}

// Style is a bag of presentation attributes for one style class.
type Style map[string]any

// Styles maps style class names to their attributes.
type Styles map[string]Style

// Theme bundles the styles and colors a view is rendered with.
type Theme struct {
	Styles Styles
	Colors Colors
}

// DefaultTheme is the dark action-menu theme.
func DefaultTheme() Theme {
	return Theme{
		Colors: Colors{
			Primary:    "#6C4DFF",
			Text:       "#FFFFFF",
			Background: "#1A2634",
			Border:     "#6C4DFF",
		},
		Styles: Styles{
			"bubble":         {"borderRadius": 16, "padding": 16, "borderWidth": 1, "gap": 10},
			"title":          {"fontSize": 18, "fontWeight": "700", "marginBottom": 12},
			"image":          {"width": "100%", "height": 150, "marginBottom": 12, "borderRadius": 8},
			"description":    {"fontSize": 15, "marginBottom": 12, "lineHeight": 22},
			"button":         {"borderRadius": 16, "borderWidth": 1, "height": 50},
			"buttonText":     {"fontSize": 16, "fontWeight": "700", "textTransform": "uppercase"},
			"textInput":      {"height": 48, "borderWidth": 1.5, "borderRadius": 12, "fontSize": 15},
			"formLabel":      {"fontSize": 14, "fontWeight": "600", "marginBottom": 8},
			"fieldContainer": {"marginBottom": 12},
			"label":          {"fontSize": 14, "fontWeight": "600", "marginBottom": 8},
			"radioButton":    {"flexDirection": "row", "alignItems": "center", "marginBottom": 12},
			"checkboxRow":    {"flexDirection": "row", "alignItems": "center"},
			"mcqRow":         {"flexDirection": "row", "alignItems": "center", "paddingVertical": 6},
			"dropdown":       {"height": 48, "borderWidth": 1, "borderRadius": 8},
			"slider":         {"width": "100%", "height": 40},
		},
	}
}

// Get returns the style for name, or nil.
func (s Styles) Get(name string) Style {
	if s == nil {
		return nil
	}
	return s[name]
}
