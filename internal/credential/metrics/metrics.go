package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential module.
type Metrics struct {
	// Accept/decline outcomes: result is "success", "failure" or "skipped"
	Decisions *prometheus.CounterVec

	// Best-effort decline steps that failed, by step
	DeclineStepFailures *prometheus.CounterVec

	// Attribute resolutions by outcome: "immediate", "fetched", "failed", "stale"
	Resolutions *prometheus.CounterVec

	// Reconciliation outcomes: "accepted", "declined", "unchanged", "error"
	Reconciliations *prometheus.CounterVec

	// Agent call latency by operation
	AgentLatency *prometheus.HistogramVec
}

// New creates the credential metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_credential_decisions_total",
			Help: "Accept and decline attempts by outcome",
		}, []string{"decision", "result"}),

		DeclineStepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_credential_decline_step_failures_total",
			Help: "Best-effort decline steps that failed",
		}, []string{"step"}),

		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_credential_resolutions_total",
			Help: "Attribute resolutions by outcome",
		}, []string{"outcome"}),

		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_credential_reconciliations_total",
			Help: "Thread reconciliations by outcome",
		}, []string{"outcome"}),

		AgentLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credwallet_credential_agent_duration_seconds",
			Help:    "Duration of agent calls by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
	}
}

// IncrementDecision records an accept or decline attempt.
func (m *Metrics) IncrementDecision(decision, result string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision, result).Inc()
	}
}

// IncrementDeclineStepFailure records a failed best-effort decline step.
func (m *Metrics) IncrementDeclineStepFailure(step string) {
	if m != nil {
		m.DeclineStepFailures.WithLabelValues(step).Inc()
	}
}

// IncrementResolution records a resolution outcome.
func (m *Metrics) IncrementResolution(outcome string) {
	if m != nil {
		m.Resolutions.WithLabelValues(outcome).Inc()
	}
}

// IncrementReconciliation records a reconciliation outcome.
func (m *Metrics) IncrementReconciliation(outcome string) {
	if m != nil {
		m.Reconciliations.WithLabelValues(outcome).Inc()
	}
}

// ObserveAgentCall records the duration of an agent call since start.
func (m *Metrics) ObserveAgentCall(operation string, start time.Time) {
	if m != nil {
		m.AgentLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
