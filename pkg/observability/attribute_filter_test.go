package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
)

func spanAttrMap(span tracetest.SpanStub) map[string]any {
	out := make(map[string]any, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}

	return out
}

func filtered(logger *slog.Logger) func(sdktrace.SpanExporter) sdktrace.SpanProcessor {
	return func(exp sdktrace.SpanExporter) sdktrace.SpanProcessor {
		return observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exp), logger)
	}
}

func TestAttributeFilter_AllowsDomainKeys(t *testing.T) {
	t.Parallel()

	tp, exporter := newRecordingTracer(t, filtered(nil))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.Int("ensemble.samples", 15),
		attribute.Int("histogram.bins", 10),
		attribute.String("percentile.style", "switched"),
		attribute.String("mcp.tool", "ensemble_histogram"),
		attribute.Bool("error", true),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrMap(spans[0])
	assert.Equal(t, int64(15), attrs["ensemble.samples"])
	assert.Equal(t, int64(10), attrs["histogram.bins"])
	assert.Equal(t, "switched", attrs["percentile.style"])
	assert.Equal(t, "ensemble_histogram", attrs["mcp.tool"])
	assert.Equal(t, true, attrs["error"])
}

func TestAttributeFilter_BlocksRawValuesAndUnknownKeys(t *testing.T) {
	t.Parallel()

	tp, exporter := newRecordingTracer(t, filtered(nil))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.Float64Slice("ensemble.values", []float64{1, 2, 3}),
		attribute.String("request.body", "{}"),
		attribute.String("user.id", "12345"),
		attribute.String("error.type", "bounds"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrMap(spans[0])
	assert.NotContains(t, attrs, "ensemble.values")
	assert.NotContains(t, attrs, "request.body")
	assert.NotContains(t, attrs, "user.id")
	assert.Equal(t, "bounds", attrs["error.type"])
}

func TestAttributeFilter_LogsDroppedKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tp, _ := newRecordingTracer(t, filtered(logger))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attribute.String("customer", "acme"))
	span.End()

	assert.Contains(t, buf.String(), "attribute blocked by filter")
	assert.Contains(t, buf.String(), "customer")
}

func TestAttributeFilter_DropsNumericSlicesInAnyNamespace(t *testing.T) {
	t.Parallel()

	tp, exporter := newRecordingTracer(t, filtered(nil))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.Int64Slice("histogram.counts", []int64{1, 2, 3}),
		attribute.Float64Slice("percentile.positions", []float64{10, 50, 90}),
		attribute.StringSlice("percentile.methods", []string{"nearest_rank"}),
		attribute.String("url.path", "/metrics"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrMap(spans[0])
	assert.NotContains(t, attrs, "histogram.counts")
	assert.NotContains(t, attrs, "percentile.positions")
	assert.Equal(t, []string{"nearest_rank"}, attrs["percentile.methods"])
	assert.Equal(t, "/metrics", attrs["url.path"])
}

func TestAttributeFilter_LogsEachKeyOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tp, _ := newRecordingTracer(t, filtered(logger))

	for range 3 {
		_, span := tp.Tracer("test").Start(context.Background(), "op")
		span.SetAttributes(attribute.String("customer", "acme"))
		span.End()
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "attribute blocked by filter"))
}

func TestAttributeFilter_FlushAndShutdown(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), nil)

	require.NoError(t, filter.ForceFlush(context.Background()))
	require.NoError(t, filter.Shutdown(context.Background()))
}
