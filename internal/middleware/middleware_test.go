package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindbridge/checkin/backend/internal/metrics"
)

func newMetricsRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/audio/{file}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestMetricsLabelsUnknownPathsAsOneSeries(t *testing.T) {
	r := newMetricsRouter()

	// 先打一次，确保 unmatched 序列已经存在。
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/warmup", nil))
	before := testutil.CollectAndCount(metrics.HTTPRequestsTotal)

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/random-%d", i), nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	assert.Equal(t, before, testutil.CollectAndCount(metrics.HTTPRequestsTotal))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")), float64(51))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := newMetricsRouter()
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/audio/{file}", "200")
	start := testutil.ToFloat64(counter)

	for _, name := range []string{"output_a.mp3", "output_b.mp3", "output_c.mp3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/audio/"+name, nil))
	}

	assert.Equal(t, start+3, testutil.ToFloat64(counter))
}

func TestRouteLabelWithoutChiContext(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeLabel(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Logger(logger)(Metrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/health"`)
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"request body too large"}`, rec.Body.String())

	// 未声明长度的请求体由 MaxBytesReader 截断。
	req := httptest.NewRequest(http.MethodPost, "/session", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)

	readErr = nil
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, readErr)
}
