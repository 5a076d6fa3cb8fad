package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCollector_Middleware_CountsByRoutePattern(t *testing.T) {
	// Arrange
	collector := NewCollector("hard")
	r := chi.NewRouter()
	r.Use(collector.Middleware)
	r.Get("/workouts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Act
	for _, path := range []string{"/workouts/a", "/workouts/b", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Assert
	body := scrape(t, collector)
	assert.Contains(t, body, `hard_http_requests_total{method="GET",route="/workouts/{id}",status="404"} 2`)
	assert.Contains(t, body, `hard_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `hard_http_request_duration_seconds_count{method="GET",route="/workouts/{id}"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollector_SeparateRegistries(t *testing.T) {
	first := NewCollector("hard")
	second := NewCollector("hard")

	first.RecordRequest("/health", http.MethodGet, http.StatusOK, 0)

	assert.Contains(t, scrape(t, first), `route="/health"`)
	assert.NotContains(t, scrape(t, second), `route="/health"`)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector
	called := false
	h := collector.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	collector.RecordRequest("/", http.MethodGet, http.StatusOK, 0)

	assert.True(t, called)
}
