package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareSetsTraceHeader(t *testing.T) {
	shutdown := InitTracer()
	defer func() { _ = shutdown(context.Background()) }()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/latest", nil))

	traceID := rec.Header().Get("X-Trace-Id")
	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, 32)
	assert.NotEqual(t, "00000000000000000000000000000000", traceID)
}

func TestMiddlewarePropagatesIncomingTraceContext(t *testing.T) {
	shutdown := InitTracer()
	defer func() { _ = shutdown(context.Background()) }()

	const incomingTrace = "4bf92f3577b34da6a3ce929d0e0e4736"

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/latest", nil)
	req.Header.Set("traceparent", "00-"+incomingTrace+"-00f067aa0ba902b7-01")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, incomingTrace, rec.Header().Get("X-Trace-Id"))
}

func TestMiddlewarePassesStatusThrough(t *testing.T) {
	shutdown := InitTracer()
	defer func() { _ = shutdown(context.Background()) }()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache-status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
