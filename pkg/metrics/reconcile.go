package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "discountsync"

// Outcome labels shared by loads and mutations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// ReconcileMetrics records load, refresh and mutation activity of the reconciliation store.
type ReconcileMetrics struct {
	duration  *prometheus.HistogramVec
	loads     *prometheus.CounterVec
	stale     *prometheus.CounterVec
	mutations *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconcile metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "load_duration_seconds",
		Help:      "Duration of full loads and background refreshes in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loads_total",
		Help:      "Completed loads and refreshes by outcome.",
	}, []string{"kind", "outcome"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_results_total",
		Help:      "Results dropped because a newer request superseded them.",
	}, []string{"kind"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Discount and assignment mutations by outcome.",
	}, []string{"entity", "op", "outcome"})
	reg.MustRegister(duration, loads, stale, mutations)
	return &ReconcileMetrics{
		duration:  duration,
		loads:     loads,
		stale:     stale,
		mutations: mutations,
	}
}

// ObserveLoad records the duration and outcome of a load or refresh.
func (m *ReconcileMetrics) ObserveLoad(kind, outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.duration.WithLabelValues(kind).Observe(duration.Seconds())
	m.loads.WithLabelValues(kind, normalizeLabel(outcome)).Inc()
}

// IncStale counts a dropped result.
func (m *ReconcileMetrics) IncStale(kind string) {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncMutation counts a mutation attempt.
func (m *ReconcileMetrics) IncMutation(entity, op, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(entity), normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
