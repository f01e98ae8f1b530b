// Package metrics exposes Prometheus counters for HTTP traffic and the lead
// pipeline. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	assignmentSyncs *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	reconciled      prometheus.Counter
}

// New registers the application collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status_code"}),
		assignmentSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_syncs_total",
			Help: "Assignments propagated to linked enquiries, by role and outcome.",
		}, []string{"role", "outcome"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "status_changes_total",
			Help: "Status changes recorded, by record kind and status class.",
		}, []string{"kind", "class"}),
		reconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconciled_enquiries_total",
			Help: "Enquiries whose assignment slots were rewritten by reconciliation.",
		}),
	}
}

// ObserveRequest counts one served HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ObserveSync counts one assignment propagation; partial marks a count mismatch
func (m *Metrics) ObserveSync(role string, partial bool) {
	if m == nil {
		return
	}
	outcome := "complete"
	if partial {
		outcome = "partial"
	}
	m.assignmentSyncs.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) ObserveStatusChange(kind, class string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(kind, class).Inc()
}

func (m *Metrics) ObserveReconciled(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
