// Package stats provides the float helpers the ensemble engine is built on.
// Inputs are expected to be finite; callers filter undefined samples first.
// Every function returns NaN for an empty slice, and all standard deviation
// calculations use population stddev (÷n, not ÷(n−1)).
package stats

import (
	"cmp"
	"math"
	"slices"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	return Sum(values) / float64(len(values))
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
func MeanStdDev(values []float64) (mean, stddev float64) {
	count := len(values)
	if count == 0 {
		return math.NaN(), math.NaN()
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(count))
}

// Percentile returns the p-th percentile of values using linear interpolation
// between the closest ranks. p must be in [0, 1]; it is clamped otherwise.
// The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return PercentileSorted(sorted, p)
}

// PercentileSorted is Percentile for input that is already sorted ascending.
func PercentileSorted(sorted []float64, p float64) float64 {
	count := len(sorted)
	if count == 0 {
		return math.NaN()
	}

	idx := Clamp(p, 0, 1) * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= count {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Min returns the smallest element in values.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	result := values[0]

	for _, v := range values[1:] {
		if v < result {
			result = v
		}
	}

	return result
}

// Max returns the largest element in values.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	result := values[0]

	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}

	return result
}

// Sum returns the sum of all elements in values. The empty sum is 0.
func Sum(values []float64) float64 {
	var result float64

	for _, v := range values {
		result += v
	}

	return result
}
