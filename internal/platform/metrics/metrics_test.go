package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveAnalysis("brief", OutcomeSuccess)
	m.ObserveAnalysis("brief", OutcomeSuccess)
	m.ObserveAnalysis("brief", OutcomeUpstreamError)
	m.ObserveHTTP(http.MethodPost, http.StatusOK)
	m.ObserveUpstream("Gemini", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("brief", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("brief", OutcomeUpstreamError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.UpstreamDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("brief", OutcomeSuccess)
		m.ObserveUpstream("Gemini", time.Second)
		m.ObserveHTTP("GET", 200)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveAnalysis("diagnostic", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `vetai_analysis_total{outcome="success",profile="diagnostic"} 1`)
}
