package metrics

import (
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

	m.ObserveSearch("serper", OutcomeOK, 120*time.Millisecond)
	m.ObserveSearch("serper", "transport_error", time.Second)
	m.ObserveScrape("upstream_rejected")
	m.ObserveVerdict("valid")
	m.ObserveLead("tts", "fallback")
	m.ObserveWidening("tts")
	m.ObserveSeed("lead")
	m.ObserveRecord("duplicate")
	m.ObserveRecord("duplicate")
	m.ObserveIteration()
	m.ObserveAuthPrompt()
	m.ObserveProviderRequest("200")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCalls.WithLabelValues("serper", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCalls.WithLabelValues("serper", "transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrapeCalls.WithLabelValues("upstream_rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Leads.WithLabelValues("tts", "fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HarvestRecords.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HarvestIterations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthPrompts))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSearch("serper", OutcomeOK, time.Second)
		m.ObserveScrape(OutcomeOK)
		m.ObserveVerdict("invalid")
		m.ObserveLead("c", "valid")
		m.ObserveWidening("c")
		m.ObserveSeed("empty")
		m.ObserveRecord("kept")
		m.ObserveIteration()
		m.ObserveAuthPrompt()
		m.ObserveProviderRequest("500")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveVerdict("valid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `leadhunter_verdicts_total{verdict="valid"} 1`)
}
