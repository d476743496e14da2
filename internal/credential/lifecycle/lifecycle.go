// Package lifecycle drives the accept/decline decision on credential offers.
//
// Decisions are guarded per credential id: while one accept or decline is in
// flight, or once a decision was made, further requests are refused. The
// agent's persisted records are authoritative and Reconcile overrides any
// in-memory decision with what the agent reports for the offer's thread.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"credwallet/internal/credential/metrics"
	"credwallet/internal/credential/models"
	"credwallet/internal/credential/ports"
	"credwallet/internal/platform/errbus"
	"credwallet/internal/platform/tracer"
	"credwallet/pkg/platform/sentinel"
)

// ErrDecisionLocked is returned when a decision is in flight or already made.
var ErrDecisionLocked = fmt.Errorf("credential decision in progress or already made: %w", sentinel.ErrConflict)

// DefaultDeclineDescription is sent to the counterparty in the problem report.
const DefaultDeclineDescription = "Credential offer declined"

const reconcileConcurrency = 8

// Decline steps named in diagnostic causes and metrics.
const (
	StepFormatData    = "format_data"
	StepDeclineOffer  = "decline_offer"
	StepPersist       = "persist_snapshot"
	StepConnection    = "connection_lookup"
	StepProblemReport = "problem_report"
)

// Status is the presentation state of one offer.
type Status struct {
	ID         string               `json:"id"`
	Phase      models.Phase         `json:"phase"`
	Decision   models.DecisionState `json:"decision"`
	Processing bool                 `json:"processing"`

	// DeclinedSnapshot is what the holder saw when declining. Nil until known.
	DeclinedSnapshot *models.AttributeSnapshot `json:"declined_snapshot,omitempty"`
}

type entry struct {
	processing bool
	reconciled bool
	decision   models.DecisionState
	declined   *models.AttributeSnapshot
}

func (e *entry) status(id string) Status {
	st := Status{
		ID:         id,
		Decision:   e.decision,
		Processing: e.processing,
	}
	switch {
	case e.processing:
		st.Phase = models.PhaseProcessing
	case e.decision == models.DecisionAccepted:
		st.Phase = models.PhaseAccepted
	case e.decision == models.DecisionDeclined:
		st.Phase = models.PhaseDeclined
	default:
		st.Phase = models.PhasePending
	}
	if e.declined != nil {
		snap := *e.declined
		st.DeclinedSnapshot = &snap
	}
	return st
}

// Controller holds per-credential decision state.
type Controller struct {
	agent              ports.Agent
	publisher          errbus.Publisher
	catalog            *errbus.Catalog
	logger             *slog.Logger
	metrics            *metrics.Metrics
	tracer             tracer.Tracer
	declineDescription string

	mu      sync.Mutex
	entries map[string]*entry
	// snapshots records ids whose declined snapshot write was claimed. It is
	// not cleared by Forget.
	snapshots map[string]struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used around agent calls.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

// WithCatalog replaces the error message catalog.
func WithCatalog(catalog *errbus.Catalog) Option {
	return func(c *Controller) {
		c.catalog = catalog
	}
}

// WithDeclineDescription sets the problem report text sent on decline.
func WithDeclineDescription(description string) Option {
	return func(c *Controller) {
		c.declineDescription = description
	}
}

// New creates a Controller publishing failures to publisher.
func New(agent ports.Agent, publisher errbus.Publisher, opts ...Option) (*Controller, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if publisher == nil {
		return nil, errors.New("error publisher is required")
	}
	c := &Controller{
		agent:              agent,
		publisher:          publisher,
		catalog:            errbus.DefaultCatalog(),
		logger:             slog.Default(),
		tracer:             tracer.NewNoop(),
		declineDescription: DefaultDeclineDescription,
		entries:            make(map[string]*entry),
		snapshots:          make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Status returns the current state of id.
func (c *Controller) Status(id string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entryLocked(id).status(id)
}

// Forget drops the state kept for id. Operations still in flight for it
// complete against the agent but their results are not applied.
func (c *Controller) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func (c *Controller) entryLocked(id string) *entry {
	e, ok := c.entries[id]
	if !ok {
		e = &entry{decision: models.DecisionNone}
		c.entries[id] = e
	}
	return e
}

// ensureReconciled checks the agent's records for the thread the first time an
// entry is used for a decision, so a decision made elsewhere is honored.
func (c *Controller) ensureReconciled(ctx context.Context, record models.CredentialRecord) {
	c.mu.Lock()
	done := c.entryLocked(record.ID).reconciled
	c.mu.Unlock()
	if !done {
		c.Reconcile(ctx, record)
	}
}

// claimSnapshotLocked reports whether the caller may write the declined
// snapshot for id. Only the first claim per id succeeds.
func (c *Controller) claimSnapshotLocked(id string) bool {
	if _, ok := c.snapshots[id]; ok {
		return false
	}
	c.snapshots[id] = struct{}{}
	return true
}

// begin claims the decision guard for id.
func (c *Controller) begin(id string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(id)
	if e.processing || e.decision != models.DecisionNone {
		return nil, false
	}
	e.processing = true
	return e, true
}

// currentLocked reports whether e is still the live entry for id.
func (c *Controller) currentLocked(id string, e *entry) bool {
	return c.entries[id] == e
}

func (c *Controller) publish(ctx context.Context, kind errbus.Kind, code int, step string, err error) {
	cause := err
	if step != "" {
		cause = fmt.Errorf("%s: %w", step, err)
	}
	c.publisher.Publish(ctx, c.catalog.NewEvent(kind, code, cause))
}

// ReconcileAll reconciles records concurrently and returns their statuses by id.
func (c *Controller) ReconcileAll(ctx context.Context, records []models.CredentialRecord) (map[string]Status, error) {
	out := make(map[string]Status, len(records))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for _, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st := c.Reconcile(gctx, rec)
			mu.Lock()
			out[rec.ID] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
