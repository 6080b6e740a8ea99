package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"loantracker/internal/infrastructure/monitoring"
)

func TestMetricsMiddleware(t *testing.T) {
	monitoring.HTTP.RequestsTotal.Reset()
	monitoring.HTTP.RequestDuration.Reset()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/test", testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, rec.Code)
	}

	expectedTotal := `
		# HELP loantracker_http_requests_total Total number of HTTP requests received.
		# TYPE loantracker_http_requests_total counter
		loantracker_http_requests_total{code="200",method="GET",path="/test"} 1
	`
	if err := testutil.CollectAndCompare(monitoring.HTTP.RequestsTotal, strings.NewReader(expectedTotal)); err != nil {
		t.Errorf("unexpected metrics for loantracker_http_requests_total: %v", err)
	}
}
