package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/zumar-garment/zumar-orderdesk/testing"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/track/ORD-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTeapot, rec.Code)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, scrape.Body.String(), "orderdesk_http_requests_total")
	require.Contains(t, scrape.Body.String(), `code="418"`)
}

func TestObserveUpstream(t *testing.T) {
	m := NewMetrics()
	m.ObserveUpstream("get_order", 200, 120*time.Millisecond)
	m.ObserveUpstream("get_order", 502, 30*time.Millisecond)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	require.Contains(t, body, "orderdesk_upstream_requests_total")
	require.Contains(t, body, `op="get_order"`)
	require.Contains(t, body, `code="502"`)
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveUpstream("get_order", 200, time.Millisecond)
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	require.NotNil(t, m.Middleware(next))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
