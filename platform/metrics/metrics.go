// Package metrics exposes the Prometheus collectors for the lifecycle engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts committed document status changes.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_transitions_total",
		Help: "Committed quote and invoice status transitions.",
	}, []string{"document", "from", "to"})

	// SideEffectFailures counts export and notification failures that were
	// reported as degraded success.
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_side_effect_failures_total",
		Help: "Secondary side effects that failed after a successful transition.",
	}, []string{"kind"})

	// NumbersAllocated counts document numbers handed out per sequence.
	NumbersAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_numbers_allocated_total",
		Help: "Document numbers allocated per sequence.",
	}, []string{"sequence"})

	// RecurringInvoices counts invoices spawned by payment of a recurring invoice.
	RecurringInvoices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_recurring_invoices_total",
		Help: "Next-period invoices created when a recurring invoice was paid.",
	})
)

// RecordTransition increments the transition counter.
func RecordTransition(document, from, to string) {
	Transitions.WithLabelValues(document, from, to).Inc()
}

// RecordSideEffectFailure increments the side effect failure counter.
func RecordSideEffectFailure(kind string) {
	SideEffectFailures.WithLabelValues(kind).Inc()
}
