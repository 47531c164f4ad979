package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
)

func TestHTTPMiddleware_CreatesSpan(t *testing.T) {
	t.Parallel()

	tp, exporter := newRecordingTracer(t, nil)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, handler)
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /metrics", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestHTTPMiddleware_ServerErrorMarksSpan(t *testing.T) {
	t.Parallel()

	tp, exporter := newRecordingTracer(t, nil)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, handler)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestHTTPMiddleware_RecordsRED(t *testing.T) {
	t.Parallel()

	tp, _ := newRecordingTracer(t, nil)
	mp, reader := newManualMeterProvider(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, writeErr := rw.Write([]byte("ok"))
		assert.NoError(t, writeErr)
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), red, handler)

	for range 3 {
		mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	}

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(3), sumInt64(t, findMetric(rm, "ensemblestat.requests.total")))
	assert.Equal(t, int64(0), sumInt64(t, findMetric(rm, "ensemblestat.inflight.requests")))
}

func TestHTTPMiddleware_PassesSpanContext(t *testing.T) {
	t.Parallel()

	tp, _ := newRecordingTracer(t, nil)

	var sawSpan bool

	handler := http.HandlerFunc(func(_ http.ResponseWriter, hr *http.Request) {
		sawSpan = trace.SpanContextFromContext(hr.Context()).IsValid()
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, handler)
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/metrics", http.NoBody))

	assert.True(t, sawSpan)
}
