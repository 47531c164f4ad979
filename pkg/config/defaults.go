// Package config provides YAML-based configuration for ensemblestat.
package config

// Histogram defaults.
const (
	DefaultHistogramBinCount = 100
	DefaultHistogramBounds   = BoundsData
	DefaultHistogramMin      = 0.0
	DefaultHistogramMax      = 0.0

	// MaxHistogramBinCount bounds the bin count accepted from any caller.
	MaxHistogramBinCount = 1 << 16
)

// DefaultHistogramFractions returns the cumulative fractions estimated from a
// histogram when none are requested.
func DefaultHistogramFractions() []float64 {
	return []float64{0.1, 0.5, 0.9}
}

// Percentile defaults.
const (
	DefaultPercentileStyle  = "regular"
	DefaultPercentileMethod = MethodNearestRank
)

// DefaultPercentilePositions returns the P10/P50/P90 positions used when none
// are configured.
func DefaultPercentilePositions() []float64 {
	return []float64{10, 50, 90}
}

// Output defaults.
const (
	DefaultOutputFormat = FormatTable
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint   = ""
	DefaultOTLPInsecure   = false
	DefaultPrometheusAddr = ""
)
