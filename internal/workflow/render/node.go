// Package render describes the output of content and field renderers: a tree of
// nodes that a UI shell paints. Interaction handlers hang off nodes and are
// triggered by key.
package render

// Node kinds emitted by the built-in renderers.
const (
	KindView      = "view"
	KindText      = "text"
	KindImage     = "image"
	KindButton    = "button"
	KindTextInput = "text-input"
	KindRadio     = "radio"
	KindMap       = "map"
	KindPieChart  = "pie-chart"
	KindSlider    = "slider"
	KindCheckbox  = "checkbox"
	KindDropdown  = "dropdown"
	KindOption    = "option"
)

// Node is one element of a rendered view.
type Node struct {
	Key      string         `json:"key,omitempty"`
	Kind     string         `json:"kind"`
	Style    string         `json:"style,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []*Node        `json:"children,omitempty"`

	OnPress  func()          `json:"-"`
	OnChange func(value any) `json:"-"`
}

// New builds a node, dropping nil children.
func New(kind, key string, props map[string]any, children ...*Node) *Node {
	n := &Node{Kind: kind, Key: key, Props: props}
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// WithStyle sets the style class and returns n.
func (n *Node) WithStyle(style string) *Node {
	n.Style = style
	return n
}

// Find returns the first node in depth-first order whose key matches.
func (n *Node) Find(key string) *Node {
	if n == nil {
		return nil
	}
	if n.Key == key {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(key); found != nil {
			return found
		}
	}
	return nil
}

// Interactive reports whether the node carries any handler.
func (n *Node) Interactive() bool {
	return n.OnPress != nil || n.OnChange != nil
}
