// Package ensemble is the numeric aggregation engine that summarizes
// ensembles of reservoir-simulation result vectors into descriptive
// statistics, exact nearest-rank percentiles and histogram-based percentile
// estimates.
//
// Input series may carry the legacy "undefined" sentinel (+Inf, see
// [Undefined]). It is recognised at ingestion and never reaches arithmetic:
// every calculator drops non-finite samples before counting.
//
// The engine is pure and single-threaded. A [Histogram] is mutated by its
// Add methods and must not be queried concurrently with mutation.
package ensemble

import "math"

// Undefined is the legacy sentinel upstream readers store for a missing
// realization or cell value.
var Undefined = math.Inf(1)

// IsValid reports whether x takes part in statistics.
// NaN and ±Inf are invalid.
func IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Filter returns the valid samples of values in their original order.
// The input is never modified.
func Filter(values []float64) []float64 {
	filtered := make([]float64, 0, len(values))

	for _, v := range values {
		if IsValid(v) {
			filtered = append(filtered, v)
		}
	}

	return filtered
}

// Sample is a single ensemble value with explicit presence.
type Sample struct {
	Value   float64
	Defined bool
}

// SampleOf translates a raw value, mapping the legacy sentinel and any other
// non-finite value to an undefined sample.
func SampleOf(x float64) Sample {
	if !IsValid(x) {
		return Sample{}
	}

	return Sample{Value: x, Defined: true}
}

// Legacy returns the raw representation of s, Undefined when s has no value.
func (s Sample) Legacy() float64 {
	if !s.Defined {
		return Undefined
	}

	return s.Value
}

// Ingest translates a raw series into samples.
func Ingest(values []float64) []Sample {
	samples := make([]Sample, len(values))

	for i, v := range values {
		samples[i] = SampleOf(v)
	}

	return samples
}

// DefinedValues returns the values of the defined samples in order.
func DefinedValues(samples []Sample) []float64 {
	values := make([]float64, 0, len(samples))

	for _, s := range samples {
		if s.Defined {
			values = append(values, s.Value)
		}
	}

	return values
}

// LegacyValues returns the raw representation of samples, one value per
// sample, with Undefined in place of every missing value.
func LegacyValues(samples []Sample) []float64 {
	values := make([]float64, len(samples))

	for i, s := range samples {
		values[i] = s.Legacy()
	}

	return values
}
