// Package menu assembles workflow action-menu payloads into interactive views.
// Each item is rendered through the content registry when a renderer is
// registered for its type, and through the built-in legacy renderers otherwise.
package menu

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"credwallet/internal/workflow/metrics"
	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// ActionFunc receives workflow actions. invitation holds at most one element:
// the invitation link or string payload attached to the action.
type ActionFunc func(actionID, workflowID string, invitation ...string)

// Assembler builds views from decoded action-menu payloads.
type Assembler struct {
	contents *registry.ContentRegistry
	fields   *registry.FieldRegistry
	theme    render.Theme
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithTheme overrides the default theme.
func WithTheme(theme render.Theme) Option {
	return func(a *Assembler) {
		a.theme = theme
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}

// New creates an Assembler over the given registries.
func New(contents *registry.ContentRegistry, fields *registry.FieldRegistry, opts ...Option) (*Assembler, error) {
	if contents == nil {
		return nil, errors.New("content registry is required")
	}
	if fields == nil {
		return nil, errors.New("field registry is required")
	}

	a := &Assembler{
		contents: contents,
		fields:   fields,
		theme:    render.DefaultTheme(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Assemble builds a view for items. The view owns a fresh form state; actions
// are forwarded to onAction tagged with workflowID.
func (a *Assembler) Assemble(ctx context.Context, items []models.ContentItem, workflowID string, onAction ActionFunc) *View {
	start := time.Now()
	defer a.metrics.ObserveAssemble(start)

	v := &View{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		assembler:  a,
		items:      items,
		onAction:   onAction,
		form:       NewFormState(),
	}
	v.render(ctx)
	return v
}

func (a *Assembler) renderItem(ctx context.Context, v *View, index int, item models.ContentItem) *render.Node {
	key := ItemKey(item, index)

	if _, ok := a.contents.Lookup(item.Type()); ok {
		node, _ := a.contents.Render(item.Type(), registry.ContentProps{
			Key:           key,
			Item:          item,
			OnAction:      v.dispatch,
			Styles:        a.theme.Styles,
			Colors:        a.theme.Colors,
			FormData:      v.form.Snapshot(),
			OnFieldChange: v.form.Set,
			Fields:        a.fields,
			Content:       v.items,
		})
		a.metrics.IncrementItemRendered("registry")
		return node
	}

	node, ok := a.renderLegacy(v, key, item)
	if !ok {
		a.logger.DebugContext(ctx, "no renderer for action-menu item",
			"workflow_id", v.WorkflowID,
			"type", item.Type(),
			"index", index,
		)
		a.metrics.IncrementItemRendered("skipped")
		return nil
	}
	a.metrics.IncrementItemRendered("legacy")
	return node
}
