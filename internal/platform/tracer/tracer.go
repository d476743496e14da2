// Package tracer provides a lightweight tracing abstraction for the wallet core.
//
// Components emit spans around agent calls through the Tracer interface so they
// stay decoupled from OpenTelemetry APIs.
//
// Implementations:
//   - Noop: for tests (zero overhead)
//   - OTel: OpenTelemetry adapter for production
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err when non-nil. Call exactly once.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the credential subsystem.
const (
	SpanAccept        = "credential.accept"
	SpanDecline       = "credential.decline"
	SpanReconcile     = "credential.reconcile"
	SpanFormatData    = "credential.format_data"
	SpanProblemReport = "credential.problem_report"
)

// Attribute keys.
const (
	AttrCredentialID = "credential.id"
	AttrThreadID     = "credential.thread_id"
	AttrState        = "credential.state"
	AttrStep         = "decline.step"
	AttrAttributes   = "credential.attribute_count"
)
