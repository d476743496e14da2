// Package errbus is the process-wide error channel. Core components publish
// structured, user-facing error events; the UI layer subscribes and renders them.
package errbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"credwallet/pkg/requestcontext"
)

// Numeric codes published by the credential lifecycle. Hosts key their
// localized messages on these.
const (
	CodeAcceptOffer  = 1024
	CodeDeclineOffer = 1025
)

// Kind classifies an event for subscribers that filter.
type Kind string

const (
	KindAcceptOffer  Kind = "credential_accept_failed"
	KindDeclineOffer Kind = "credential_decline_failed"
)

// Event is a structured error destined for the user.
type Event struct {
	ID              uuid.UUID `json:"id"`
	Kind            Kind      `json:"kind"`
	Title           string    `json:"title"`
	Detail          string    `json:"detail"`
	DiagnosticCause string    `json:"diagnostic_cause"`
	Code            int       `json:"code"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Publisher is the narrow side of the bus handed to core components.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event and the drop is counted.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]chan Event
	dropped int64
	logger  *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to record published and dropped events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{subs: make(map[uuid.UUID]chan Event)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish stamps the event and delivers it to every subscriber.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx)
	}

	if b.logger != nil {
		b.logger.WarnContext(ctx, "error event published",
			"event_id", event.ID.String(),
			"kind", string(event.Kind),
			"code", event.Code,
			"cause", event.DiagnosticCause,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.dropped++
		}
	}
}

// Subscribe registers a listener with the given buffer size. The returned
// cancel func unregisters and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	id := uuid.New()
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

var _ Publisher = (*Bus)(nil)
