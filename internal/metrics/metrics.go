package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var transitionDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics holds the Prometheus instruments for the workflow engine and the
// reconciler.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	LockChangesTotal   *prometheus.CounterVec
	ReconcileDrifts    prometheus.Gauge
	ReconcileRunsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var _ interfaces.TransitionObserver = (*Metrics)(nil)

// New creates the instruments and registers them on reg. Pass a
// *prometheus.Registry to also serve them through Handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsroom_workflow_transitions_total",
			Help: "Workflow transition requests by action and outcome.",
		}, []string{"action", "outcome"}),
		TransitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsroom_workflow_transition_duration_seconds",
			Help:    "Workflow transition handling time in seconds.",
			Buckets: transitionDurationBuckets,
		}, []string{"action"}),
		LockChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsroom_workflow_lock_changes_total",
			Help: "Lock toggle requests by requested value and outcome.",
		}, []string{"locked", "outcome"}),
		ReconcileDrifts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsroom_workflow_reconcile_drifts",
			Help: "Articles whose stage lacked a matching audit event on the last reconcile run.",
		}),
		ReconcileRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsroom_workflow_reconcile_runs_total",
			Help: "Reconcile runs by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.TransitionsTotal,
			m.TransitionDuration,
			m.LockChangesTotal,
			m.ReconcileDrifts,
			m.ReconcileRunsTotal,
		)
	}
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = gatherer
	}
	return m
}

// ObserveTransition records a RequestTransition outcome.
func (m *Metrics) ObserveTransition(action string, outcome string, elapsed time.Duration) {
	m.TransitionsTotal.WithLabelValues(action, outcome).Inc()
	m.TransitionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveLock records a SetLocked outcome.
func (m *Metrics) ObserveLock(locked bool, outcome string) {
	m.LockChangesTotal.WithLabelValues(strconv.FormatBool(locked), outcome).Inc()
}

// ObserveReconcile records the result of a reconcile run.
func (m *Metrics) ObserveReconcile(drifts int, err error) {
	if err != nil {
		m.ReconcileRunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ReconcileRunsTotal.WithLabelValues("ok").Inc()
	m.ReconcileDrifts.Set(float64(drifts))
}

// Handler serves the registered metrics. It falls back to the default
// gatherer when New was given a registerer that cannot gather.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
