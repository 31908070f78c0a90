package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTransitionCountsByOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("publish", "accepted", 10*time.Millisecond)
	m.ObserveTransition("publish", "Locked", time.Millisecond)
	m.ObserveTransition("publish", "Locked", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("publish", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("publish", "Locked")))
}

func TestObserveLockAndReconcile(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLock(true, "accepted")
	m.ObserveReconcile(3, nil)
	m.ObserveReconcile(0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockChangesTotal.WithLabelValues("true", "accepted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReconcileDrifts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileRunsTotal.WithLabelValues("error")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveTransition("toReview", "accepted", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "newsroom_workflow_transitions_total"))
}
