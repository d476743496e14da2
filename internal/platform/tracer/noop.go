package tracer

import "context"

// Noop discards all spans.
type Noop struct{}

// NewNoop returns a tracer that records nothing.
func NewNoop() Noop { return Noop{} }

// Start returns ctx unchanged and a span that does nothing.
func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}

var (
	_ Tracer = Noop{}
	_ Span   = noopSpan{}
)
