package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/v1/visitors", 200)
	m.ObserveRequest("GET", "/api/v1/visitors", 200)
	m.ObserveSync("agent", false)
	m.ObserveSync("agent", true)
	m.ObserveStatusChange("visitor", "lead")
	m.ObserveReconciled(3)
	m.ObserveReconciled(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/visitors", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assignmentSyncs.WithLabelValues("agent", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("visitor", "lead")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.reconciled))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200)
		m.ObserveSync("agent", true)
		m.ObserveStatusChange("enquiry", "other")
		m.ObserveReconciled(1)
	})
}
