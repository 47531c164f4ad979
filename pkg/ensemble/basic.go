package ensemble

import (
	"math"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/stats"
)

// BasicStats holds the descriptive statistics of the valid samples of a series.
// All float fields are NaN when Count is zero.
type BasicStats struct {
	Count  int
	Min    float64
	Max    float64
	Sum    float64
	Range  float64
	Mean   float64
	StdDev float64
}

// Valid reports whether the statistics were computed from at least one sample.
func (b BasicStats) Valid() bool {
	return b.Count > 0
}

// CalculateBasicStatistics returns min, max, sum, range, mean and population
// standard deviation of the valid samples of values.
func CalculateBasicStatistics(values []float64) BasicStats {
	filtered := Filter(values)
	if len(filtered) == 0 {
		nan := math.NaN()

		return BasicStats{Min: nan, Max: nan, Sum: nan, Range: nan, Mean: nan, StdDev: nan}
	}

	minVal := stats.Min(filtered)
	maxVal := stats.Max(filtered)
	mean, stddev := stats.MeanStdDev(filtered)

	return BasicStats{
		Count:  len(filtered),
		Min:    minVal,
		Max:    maxVal,
		Sum:    stats.Sum(filtered),
		Range:  maxVal - minVal,
		Mean:   mean,
		StdDev: stddev,
	}
}
