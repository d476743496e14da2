package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the workflow module.
type Metrics struct {
	// Rendered items by path: "registry", "legacy", "skipped"
	ItemsRendered *prometheus.CounterVec

	// Actions forwarded to the host, by whether an invitation was attached
	ActionsDispatched *prometheus.CounterVec

	// Payloads rejected before assembly, by reason
	PayloadsRejected *prometheus.CounterVec

	AssembleLatency prometheus.Histogram
}

// New creates the workflow metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ItemsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_workflow_items_rendered_total",
			Help: "Action-menu items rendered by rendering path",
		}, []string{"path"}),

		ActionsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_workflow_actions_dispatched_total",
			Help: "Workflow actions forwarded to the host",
		}, []string{"invitation"}),

		PayloadsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_workflow_payloads_rejected_total",
			Help: "Action-menu payloads rejected before assembly",
		}, []string{"reason"}), // reason: "schema", "decode"

		AssembleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credwallet_workflow_assemble_duration_seconds",
			Help:    "Duration of action-menu assembly",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// IncrementItemRendered records one item rendered through path.
func (m *Metrics) IncrementItemRendered(path string) {
	if m != nil {
		m.ItemsRendered.WithLabelValues(path).Inc()
	}
}

// IncrementActionDispatched records an action forwarded to the host.
func (m *Metrics) IncrementActionDispatched(withInvitation bool) {
	if m == nil {
		return
	}
	label := "false"
	if withInvitation {
		label = "true"
	}
	m.ActionsDispatched.WithLabelValues(label).Inc()
}

// IncrementPayloadRejected records a payload refused before assembly.
func (m *Metrics) IncrementPayloadRejected(reason string) {
	if m != nil {
		m.PayloadsRejected.WithLabelValues(reason).Inc()
	}
}

// ObserveAssemble records assembly duration since start.
func (m *Metrics) ObserveAssemble(start time.Time) {
	if m != nil {
		m.AssembleLatency.Observe(time.Since(start).Seconds())
	}
}
