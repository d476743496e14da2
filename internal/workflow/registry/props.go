package registry

import (
	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/render"
)

// ContentRenderer renders one content item. Returning nil renders nothing.
type ContentRenderer func(props ContentProps) *render.Node

// FieldRenderer renders one form field editor. Returning nil renders nothing.
type FieldRenderer func(props FieldProps) *render.Node

// ContentProps is everything a content renderer may use.
type ContentProps struct {
	// Key is the node key assigned to this item; child keys should extend it.
	Key  string
	Item models.ContentItem

	// OnAction dispatches a workflow action. A non-empty string payload is
	// forwarded to the host as an invitation.
	OnAction func(actionID string, payload any)

	Styles render.Styles
	Colors render.Colors

	// FormData is a read-only snapshot of the view's form state.
	FormData      map[string]any
	OnFieldChange func(name string, value any)

	Fields  *FieldRegistry
	Content []models.ContentItem
}

// FieldProps is everything a field renderer may use.
type FieldProps struct {
	Key      string
	Field    models.FormField
	Value    any
	OnChange func(value any)
	Styles   render.Styles
	Colors   render.Colors
}

// ContentRegistry maps content type tags to renderers.
type ContentRegistry struct {
	*Registry[ContentRenderer]
}

// NewContentRegistry returns an empty content registry.
func NewContentRegistry() *ContentRegistry {
	return &ContentRegistry{Registry: New[ContentRenderer]()}
}

// Register rejects nil renderers in addition to the base checks.
func (r *ContentRegistry) Register(tag string, renderer ContentRenderer) error {
	if renderer == nil {
		return errNilRenderer
	}
	return r.Registry.Register(tag, renderer)
}

// Render invokes the renderer for tag. ok is false when tag is not registered;
// a registered renderer may still return a nil node.
func (r *ContentRegistry) Render(tag string, props ContentProps) (node *render.Node, ok bool) {
	renderer, ok := r.Lookup(tag)
	if !ok {
		return nil, false
	}
	return renderer(props), true
}

// FieldRegistry maps form field type tags to editors.
type FieldRegistry struct {
	*Registry[FieldRenderer]
}

// NewFieldRegistry returns an empty field registry.
func NewFieldRegistry() *FieldRegistry {
	return &FieldRegistry{Registry: New[FieldRenderer]()}
}

// Register rejects nil renderers in addition to the base checks.
func (r *FieldRegistry) Register(tag string, renderer FieldRenderer) error {
	if renderer == nil {
		return errNilRenderer
	}
	return r.Registry.Register(tag, renderer)
}

// Render invokes the editor for tag. ok is false when tag is not registered.
func (r *FieldRegistry) Render(tag string, props FieldProps) (node *render.Node, ok bool) {
	if r == nil {
		return nil, false
	}
	renderer, ok := r.Lookup(tag)
	if !ok {
		return nil, false
	}
	return renderer(props), true
}
