package ensemble

import (
	"math"
	"slices"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/stats"
)

// PercentileStyle selects how a percentile position is read.
type PercentileStyle int

const (
	// Regular reads P10 as the 10th percentile.
	Regular PercentileStyle = iota
	// Switched follows the petroleum convention: P10 is the value exceeded by
	// 10% of the realizations, i.e. the 90th percentile.
	Switched
)

// Percentile position bounds.
const (
	MinPosition = 0.0
	MaxPosition = 100.0
)

// String returns the configuration name of the style.
func (s PercentileStyle) String() string {
	if s == Switched {
		return "switched"
	}

	return "regular"
}

// ParsePercentileStyle maps a configuration name to a style.
func ParsePercentileStyle(name string) (PercentileStyle, bool) {
	switch name {
	case "", "regular":
		return Regular, true
	case "switched":
		return Switched, true
	default:
		return Regular, false
	}
}

// position returns p clamped to [0, 100] and mirrored for Switched.
func (s PercentileStyle) position(p float64) float64 {
	p = stats.Clamp(p, MinPosition, MaxPosition)
	if s == Switched {
		return MaxPosition - p
	}

	return p
}

// CalculateNearestRankPercentiles returns the exact order-statistic percentile
// of the valid samples of values for every position, in the same order.
//
// rank = ceil(p/100 × N) clamped to [1, N]; there is no interpolation, so
// p = 0 yields the minimum and p = 100 the maximum. Positions outside
// [0, 100] are clamped. A NaN position yields NaN, as does every position
// when no sample is valid.
func CalculateNearestRankPercentiles(values, positions []float64, style PercentileStyle) []float64 {
	return NearestRankSorted(SortedValid(values), positions, style)
}

// NearestRankSorted is CalculateNearestRankPercentiles over the output of
// SortedValid.
func NearestRankSorted(sorted, positions []float64, style PercentileStyle) []float64 {
	results := make([]float64, len(positions))
	count := len(sorted)

	for i, p := range positions {
		if count == 0 || math.IsNaN(p) {
			results[i] = math.NaN()

			continue
		}

		rank := int(math.Ceil(style.position(p) * float64(count) / MaxPosition))
		rank = stats.Clamp(rank, 1, count)

		results[i] = sorted[rank-1]
	}

	return results
}

// CalculateInterpolatedPercentiles returns percentiles of the valid samples of
// values using linear interpolation between the closest ranks.
// Positions outside [0, 100] are clamped. A NaN position yields NaN, as does
// every position when no sample is valid.
func CalculateInterpolatedPercentiles(values, positions []float64, style PercentileStyle) []float64 {
	return InterpolatedSorted(SortedValid(values), positions, style)
}

// InterpolatedSorted is CalculateInterpolatedPercentiles over the output of
// SortedValid.
func InterpolatedSorted(sorted, positions []float64, style PercentileStyle) []float64 {
	results := make([]float64, len(positions))

	for i, p := range positions {
		if math.IsNaN(p) {
			results[i] = math.NaN()

			continue
		}

		results[i] = stats.PercentileSorted(sorted, style.position(p)/MaxPosition)
	}

	return results
}

// SortedValid returns the valid samples of values in ascending order. values
// is not modified.
func SortedValid(values []float64) []float64 {
	sorted := Filter(values)
	slices.Sort(sorted)

	return sorted
}
