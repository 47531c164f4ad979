package ensemble

import (
	"math"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/stats"
)

// CalculatePercentil estimates the percentile at fraction (in [0, 1]) from the
// binned distribution, interpolating linearly inside the bin where the
// cumulative count reaches fraction × TotalCount. The estimate is quantized
// by the bin width and converges to the exact percentile as the bin count
// grows.
//
// Fractions outside [0, 1] are clamped. An empty histogram or a NaN fraction
// yields NaN.
func (h *Histogram) CalculatePercentil(fraction float64) float64 {
	if h.total == 0 || math.IsNaN(fraction) {
		return math.NaN()
	}

	target := stats.Clamp(fraction, 0, 1) * float64(h.total)

	var cumulative int

	for bin, count := range h.counts {
		cumulative += count

		if float64(cumulative) < target {
			continue
		}

		if count == 0 {
			return h.min + float64(bin)*h.width
		}

		endOfBin := h.min + float64(bin+1)*h.width
		unused := (float64(cumulative) - target) / float64(count)

		return endOfBin - unused*h.width
	}

	return h.max
}

// CalculatePercentiles evaluates CalculatePercentil for every fraction.
// Switched reads fraction f as 1-f.
func (h *Histogram) CalculatePercentiles(fractions []float64, style PercentileStyle) []float64 {
	results := make([]float64, len(fractions))

	for i, f := range fractions {
		f = stats.Clamp(f, 0, 1)
		if style == Switched {
			f = 1 - f
		}

		results[i] = h.CalculatePercentil(f)
	}

	return results
}
