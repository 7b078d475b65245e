package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveAssessment("success", 3*time.Second)
	m.ObserveAssessment("error", time.Second)
	m.ObserveAssessment("success", 5*time.Second)
	m.ObserveChat("success")
	m.ObservePage("results")
	m.SetSessions(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Assessments.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Assessments.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageTransitions.WithLabelValues("results")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAssessment("success", time.Second)
		m.ObserveChat("error")
		m.ObservePage("login")
		m.SetSessions(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveChat("rate_limited")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `maturitymap_chat_requests_total{outcome="rate_limited"} 1`)
}
