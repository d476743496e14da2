// Package resolver resolves the attribute snapshot of credential records.
// Records that already carry attributes resolve immediately; offers without
// attributes are resolved from the agent's offer format data in the background.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"credwallet/internal/credential/metrics"
	"credwallet/internal/credential/models"
	"credwallet/internal/platform/tracer"
)

// FormatDataSource fetches the live offer data of a record.
type FormatDataSource interface {
	GetFormatData(ctx context.Context, id string) (models.FormatData, error)
}

// Resolution is the resolver's current view of one record.
type Resolution struct {
	Phase    models.ResolutionPhase   `json:"phase"`
	Snapshot models.AttributeSnapshot `json:"snapshot"`
	Loading  bool                     `json:"loading"`
}

// Listener is notified when a background resolution completes.
type Listener func(id string, r Resolution)

type entry struct {
	fingerprint string
	res         Resolution
	done        chan struct{}
}

// Resolver tracks resolution per credential id.
type Resolver struct {
	source   FormatDataSource
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	listener Listener

	mu      sync.Mutex
	entries map[string]*entry
	flight  singleflight.Group
	wg      sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used around format data fetches.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = t
	}
}

// OnResolved registers the completion listener.
func OnResolved(l Listener) Option {
	return func(r *Resolver) {
		r.listener = l
	}
}

// New creates a Resolver.
func New(source FormatDataSource, opts ...Option) (*Resolver, error) {
	if source == nil {
		return nil, errors.New("format data source is required")
	}
	r := &Resolver{
		source:  source,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the current resolution without blocking. When record needs
// a fetch it is started in the background and Loading is true until it lands.
// A record whose state or attribute list changed since the last call is
// evaluated afresh.
func (r *Resolver) Resolve(ctx context.Context, record models.CredentialRecord) Resolution {
	return r.evaluate(ctx, record).res
}

// Await resolves record and blocks until a background fetch completes or ctx
// is done.
func (r *Resolver) Await(ctx context.Context, record models.CredentialRecord) (Resolution, error) {
	r.mu.Lock()
	e := r.evaluateLocked(ctx, record)
	done := e.done
	r.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return r.current(record.ID), ctx.Err()
	}
	return r.current(record.ID), nil
}

// Forget drops the state kept for id. An in-flight fetch for it is discarded.
func (r *Resolver) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Wait blocks until every background fetch has finished.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

func (r *Resolver) current(id string) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.res
	}
	return Resolution{Phase: models.ResolutionUnresolved}
}

func (r *Resolver) evaluate(ctx context.Context, record models.CredentialRecord) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evaluateLocked(ctx, record)
}

func (r *Resolver) evaluateLocked(ctx context.Context, record models.CredentialRecord) *entry {
	fp := fingerprint(record)
	if e, ok := r.entries[record.ID]; ok && e.fingerprint == fp {
		return e
	}

	ac := record.AnonCreds()
	e := &entry{
		fingerprint: fp,
		done:        make(chan struct{}),
		res: Resolution{
			Phase: models.ResolutionResolved,
			Snapshot: models.AttributeSnapshot{
				Attributes:             slices.Clone(record.Attributes),
				CredentialDefinitionID: ac.CredentialDefinitionID,
				SchemaID:               ac.SchemaID,
			},
		},
	}
	r.entries[record.ID] = e

	if len(record.Attributes) > 0 || record.State != models.StateOfferReceived {
		close(e.done)
		r.metrics.IncrementResolution("immediate")
		return e
	}

	e.res.Phase = models.ResolutionResolving
	e.res.Loading = true
	r.wg.Add(1)
	go r.fetch(context.WithoutCancel(ctx), record.ID, e)
	return e
}

func (r *Resolver) fetch(ctx context.Context, id string, e *entry) {
	defer r.wg.Done()

	ctx, span := r.tracer.Start(ctx, tracer.SpanFormatData, tracer.String(tracer.AttrCredentialID, id))
	start := time.Now()
	v, err, _ := r.flight.Do(id, func() (any, error) {
		return r.source.GetFormatData(ctx, id)
	})
	r.metrics.ObserveAgentCall("get_format_data", start)
	span.End(err)

	r.mu.Lock()
	if r.entries[id] != e {
		r.mu.Unlock()
		close(e.done)
		r.metrics.IncrementResolution("stale")
		r.logger.DebugContext(ctx, "discarding stale attribute resolution", "credential_id", id)
		return
	}

	e.res.Loading = false
	if err != nil {
		e.res.Phase = models.ResolutionUnresolved
		e.res.Snapshot.Attributes = nil
		r.metrics.IncrementResolution("failed")
		r.logger.WarnContext(ctx, "failed to resolve offer attributes",
			"credential_id", id,
			"error", err,
		)
	} else {
		fd, _ := v.(models.FormatData)
		e.res.Phase = models.ResolutionResolved
		if len(fd.OfferAttributes) > 0 {
			e.res.Snapshot.Attributes = slices.Clone(fd.OfferAttributes)
		}
		if credDef := fd.CredDefID(); credDef != "" {
			e.res.Snapshot.CredentialDefinitionID = credDef
		}
		if schemaID := fd.SchemaID(); schemaID != "" {
			e.res.Snapshot.SchemaID = schemaID
		}
		r.metrics.IncrementResolution("fetched")
	}
	res := e.res
	close(e.done)
	r.mu.Unlock()

	if r.listener != nil {
		r.listener(id, res)
	}
}

// fingerprint identifies the inputs resolution depends on.
func fingerprint(record models.CredentialRecord) string {
	var b strings.Builder
	b.WriteString(string(record.State))
	for _, a := range record.Attributes {
		b.WriteByte(0)
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(a.Value)
	}
	return b.String()
}
