package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "ensemblestat.requests.total"
	metricRequestDuration  = "ensemblestat.request.duration.seconds"
	metricErrorsTotal      = "ensemblestat.errors.total"
	metricInflightRequests = "ensemblestat.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"
)

// durationBuckets covers 100µs to 10s. Engine calls are in-memory, so only
// large ensembles or slow input streams reach the upper buckets.
var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// REDMetrics counts CLI commands, MCP tool calls and metrics scrapes by
// operation: rate, errors, duration and the number still running.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates the request instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	var (
		red REDMetrics
		err error
	)

	red.requests, err = mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Completed requests by operation and status"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	red.duration, err = mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration by operation and status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	red.errors, err = mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Failed requests by operation"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	red.inflight, err = mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Requests started and not yet finished"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &red, nil
}

// Begin marks op as running and returns the function that finishes it with
// a status. The returned function must be called exactly once.
func (rm *REDMetrics) Begin(ctx context.Context, op string) func(status string) {
	start := time.Now()
	opAttr := attribute.String(attrOp, op)

	rm.inflight.Add(ctx, 1, metric.WithAttributes(opAttr))

	return func(status string) {
		rm.inflight.Add(ctx, -1, metric.WithAttributes(opAttr))

		attrs := metric.WithAttributes(opAttr, attribute.String(attrStatus, status))
		rm.requests.Add(ctx, 1, attrs)
		rm.duration.Record(ctx, time.Since(start).Seconds(), attrs)

		if status == StatusError {
			rm.errors.Add(ctx, 1, metric.WithAttributes(opAttr))
		}
	}
}

// StatusOf maps a request outcome to StatusOK or StatusError.
func StatusOf(failed bool) string {
	if failed {
		return StatusError
	}

	return StatusOK
}
