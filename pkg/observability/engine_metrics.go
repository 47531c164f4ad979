package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSamplesTotal     = "ensemblestat.samples.total"
	metricUndefinedTotal   = "ensemblestat.samples.undefined.total"
	metricPercentileTotal  = "ensemblestat.percentile.queries.total"
	metricHistogramBinsSet = "ensemblestat.histogram.bins"
	metricCacheLookups     = "ensemblestat.sample_cache.lookups.total"

	attrMethod      = "method"
	attrCacheResult = "result"

	cacheResultHit  = "hit"
	cacheResultMiss = "miss"
)

// EngineMetrics counts the work handed to the aggregation engine.
// The engine stays free of instrumentation; adapters record these after
// each call.
type EngineMetrics struct {
	samples       metric.Int64Counter
	undefined     metric.Int64Counter
	percentiles   metric.Int64Counter
	histogramBins metric.Int64Histogram
	cacheLookups  metric.Int64Counter
}

// SampleSummary describes one ingested series.
type SampleSummary struct {
	Total     int
	Undefined int
}

// NewEngineMetrics creates engine instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	samples, err := mt.Int64Counter(metricSamplesTotal,
		metric.WithDescription("Samples handed to the engine"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSamplesTotal, err)
	}

	undefined, err := mt.Int64Counter(metricUndefinedTotal,
		metric.WithDescription("Samples dropped as undefined"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricUndefinedTotal, err)
	}

	percentiles, err := mt.Int64Counter(metricPercentileTotal,
		metric.WithDescription("Percentile positions evaluated, by method"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPercentileTotal, err)
	}

	bins, err := mt.Int64Histogram(metricHistogramBinsSet,
		metric.WithDescription("Bin count of constructed histograms"),
		metric.WithUnit("{bin}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricHistogramBinsSet, err)
	}

	lookups, err := mt.Int64Counter(metricCacheLookups,
		metric.WithDescription("Sorted sample cache lookups, by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheLookups, err)
	}

	return &EngineMetrics{
		samples:       samples,
		undefined:     undefined,
		percentiles:   percentiles,
		histogramBins: bins,
		cacheLookups:  lookups,
	}, nil
}

// RecordSamples records the size of an ingested series.
func (em *EngineMetrics) RecordSamples(ctx context.Context, summary SampleSummary) {
	em.samples.Add(ctx, int64(summary.Total))
	em.undefined.Add(ctx, int64(summary.Undefined))
}

// RecordPercentiles records count percentile evaluations with method.
func (em *EngineMetrics) RecordPercentiles(ctx context.Context, method string, count int) {
	em.percentiles.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrMethod, method)))
}

// RecordHistogram records the bin count of a constructed histogram.
func (em *EngineMetrics) RecordHistogram(ctx context.Context, bins int) {
	em.histogramBins.Record(ctx, int64(bins))
}

// RecordCacheLookup records one sorted sample cache lookup.
func (em *EngineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := cacheResultMiss
	if hit {
		result = cacheResultHit
	}

	em.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCacheResult, result)))
}
