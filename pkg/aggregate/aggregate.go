// Package aggregate runs engine calculations for a named sample set and
// packages the results as report summaries. It is the shared entry point of
// the CLI commands and the MCP tools.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/config"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/report"
)

// ErrUnknownMethod is returned for an unsupported percentile method.
var ErrUnknownMethod = errors.New("unknown percentile method")

// ErrTooManyBins is returned when a histogram asks for more than
// [config.MaxHistogramBinCount] bins.
var ErrTooManyBins = config.ErrTooManyBins

// ErrNoSamples is returned when histogram bounds must be derived from data
// and no sample is valid.
var ErrNoSamples = errors.New("no valid samples to derive histogram bounds")

// PercentileOptions selects the exact percentiles to compute.
type PercentileOptions struct {
	Positions []float64
	Method    string
	Style     ensemble.PercentileStyle
}

// HistogramOptions selects histogram construction and estimation. Nil Min
// or Max is taken from the valid samples.
type HistogramOptions struct {
	Min       *float64
	Max       *float64
	Fractions []float64
	BinCount  int
	Style     ensemble.PercentileStyle
}

// Aggregator computes summaries and records engine metrics.
type Aggregator struct {
	metrics *observability.EngineMetrics
	cache   *SampleCache
}

// New returns an Aggregator. metrics may be nil.
func New(metrics *observability.EngineMetrics) *Aggregator {
	return &Aggregator{metrics: metrics}
}

// WithSampleCache makes percentile requests reuse the sorted samples of
// series seen before.
func (a *Aggregator) WithSampleCache(cache *SampleCache) *Aggregator {
	a.cache = cache

	return a
}

// Statistics summarises samples with basic statistics.
func (a *Aggregator) Statistics(ctx context.Context, name string, samples []ensemble.Sample) *report.Summary {
	summary := a.newSummary(ctx, name, samples)
	summary.Stats = report.NewStats(ensemble.CalculateBasicStatistics(ensemble.DefinedValues(samples)))

	return summary
}

// Percentiles summarises samples with exact percentiles.
func (a *Aggregator) Percentiles(
	ctx context.Context, name string, samples []ensemble.Sample, opts PercentileOptions,
) (*report.Summary, error) {
	values := ensemble.DefinedValues(samples)

	positions := opts.Positions
	if len(positions) == 0 {
		positions = config.DefaultPercentilePositions()
	}

	method := opts.Method
	if method == "" {
		method = config.DefaultPercentileMethod
	}

	var results []float64

	switch method {
	case config.MethodNearestRank:
		results = ensemble.NearestRankSorted(a.sorted(ctx, values), positions, opts.Style)
	case config.MethodInterpolated:
		results = ensemble.InterpolatedSorted(a.sorted(ctx, values), positions, opts.Style)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	if a.metrics != nil {
		a.metrics.RecordPercentiles(ctx, method, len(positions))
	}

	summary := a.newSummary(ctx, name, samples)
	summary.Method = method
	summary.Style = opts.Style.String()
	summary.Percentiles = report.NewPercentiles(positions, results)

	return summary, nil
}

// Histogram bins samples and estimates percentiles from the bins. The built
// histogram is returned for chart rendering.
func (a *Aggregator) Histogram(
	ctx context.Context, name string, samples []ensemble.Sample, opts HistogramOptions,
) (*report.Summary, *ensemble.Histogram, error) {
	binCount := opts.BinCount
	if binCount == 0 {
		binCount = config.DefaultHistogramBinCount
	}

	if binCount > config.MaxHistogramBinCount {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooManyBins, binCount, config.MaxHistogramBinCount)
	}

	values := ensemble.DefinedValues(samples)

	fractions := opts.Fractions
	if len(fractions) == 0 {
		fractions = config.DefaultHistogramFractions()
	}

	minBound, maxBound, err := histogramBounds(values, opts)
	if err != nil {
		return nil, nil, err
	}

	hist, err := ensemble.NewHistogram(minBound, maxBound, binCount)
	if err != nil {
		return nil, nil, fmt.Errorf("build histogram: %w", err)
	}

	hist.AddData(values)

	if a.metrics != nil {
		a.metrics.RecordHistogram(ctx, binCount)
	}

	signs := ensemble.NewPosNegAccumulator()
	signs.AddData(values)

	summary := a.newSummary(ctx, name, samples)
	summary.Style = opts.Style.String()
	summary.Histogram = report.NewHistogram(hist, fractions, hist.CalculatePercentiles(fractions, opts.Style)).
		WithLogAxisHint(signs.Result())

	return summary, hist, nil
}

// Curves computes per-step statistics curves across equal-length realizations.
// Undefined samples reach the engine as the legacy sentinel and are dropped
// per step.
func (a *Aggregator) Curves(
	ctx context.Context, name string, realizations [][]ensemble.Sample, style ensemble.PercentileStyle,
) (*report.Summary, error) {
	vectors := make([][]float64, len(realizations))

	var pooled []ensemble.Sample

	for i, r := range realizations {
		vectors[i] = ensemble.LegacyValues(r)
		pooled = append(pooled, r...)
	}

	curves, err := ensemble.CalculateEnsembleCurves(vectors, style)
	if err != nil {
		return nil, fmt.Errorf("ensemble curves: %w", err)
	}

	summary := a.newSummary(ctx, name, pooled)
	summary.Style = style.String()
	summary.Curves = report.NewCurves(curves)

	return summary, nil
}

func (a *Aggregator) sorted(ctx context.Context, values []float64) []float64 {
	if a.cache == nil {
		return ensemble.SortedValid(values)
	}

	sorted, hit := a.cache.Sorted(values)

	if a.metrics != nil {
		a.metrics.RecordCacheLookup(ctx, hit)
	}

	return sorted
}

func (a *Aggregator) newSummary(ctx context.Context, name string, samples []ensemble.Sample) *report.Summary {
	undefined := 0

	for _, s := range samples {
		if !s.Defined {
			undefined++
		}
	}

	if a.metrics != nil {
		a.metrics.RecordSamples(ctx, observability.SampleSummary{Total: len(samples), Undefined: undefined})
	}

	return &report.Summary{Name: name, Samples: len(samples), Undefined: undefined}
}

func histogramBounds(values []float64, opts HistogramOptions) (minBound, maxBound float64, err error) {
	if opts.Min != nil && opts.Max != nil {
		return *opts.Min, *opts.Max, nil
	}

	var acc ensemble.MinMaxAccumulator

	acc.AddData(values)

	dataMin, dataMax := acc.Result()
	if !ensemble.IsValid(dataMin) {
		return 0, 0, ErrNoSamples
	}

	minBound, maxBound = dataMin, dataMax

	if opts.Min != nil {
		minBound = *opts.Min
	}

	if opts.Max != nil {
		maxBound = *opts.Max
	}

	return minBound, maxBound, nil
}
