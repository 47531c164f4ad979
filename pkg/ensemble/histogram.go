package ensemble

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/stats"
)

// Sentinel construction errors.
var (
	ErrInvalidBounds   = errors.New("histogram max must be greater than min")
	ErrInvalidBinCount = errors.New("histogram bin count must be positive")
)

// Histogram is a fixed-bin frequency distribution over [min, max].
// Bounds and bin count are fixed at construction.
type Histogram struct {
	counts []int
	min    float64
	max    float64
	width  float64
	total  int
}

// NewHistogram creates an empty histogram of binCount equal bins spanning
// [minBound, maxBound].
func NewHistogram(minBound, maxBound float64, binCount int) (*Histogram, error) {
	if !IsValid(minBound) || !IsValid(maxBound) || !(maxBound > minBound) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, minBound, maxBound)
	}

	if binCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBinCount, binCount)
	}

	return &Histogram{
		counts: make([]int, binCount),
		min:    minBound,
		max:    maxBound,
		width:  (maxBound - minBound) / float64(binCount),
	}, nil
}

// MustNewHistogram is NewHistogram for parameters known to be valid.
// It panics on invalid bounds or bin count.
func MustNewHistogram(minBound, maxBound float64, binCount int) *Histogram {
	h, err := NewHistogram(minBound, maxBound, binCount)
	if err != nil {
		panic(err)
	}

	return h
}

// AddData adds every valid sample of values.
func (h *Histogram) AddData(values []float64) {
	for _, v := range values {
		h.AddValue(v)
	}
}

// AddValue adds a single sample. Invalid samples are ignored; samples outside
// [min, max] are counted in the nearest boundary bin.
func (h *Histogram) AddValue(value float64) {
	if !IsValid(value) {
		return
	}

	h.counts[h.binIndex(value)]++
	h.total++
}

// binIndex scales by binCount-1 so that max lands in the last bin.
func (h *Histogram) binIndex(value float64) int {
	last := len(h.counts) - 1
	pos := float64(last) * (value - h.min) / (h.max - h.min)

	return int(math.Floor(stats.Clamp(pos, 0, float64(last))))
}

// Counts returns a copy of the per-bin sample counts.
func (h *Histogram) Counts() []int {
	return slices.Clone(h.counts)
}

// BinWidth returns (max-min)/binCount.
func (h *Histogram) BinWidth() float64 {
	return h.width
}

// MinBound returns the lower domain bound.
func (h *Histogram) MinBound() float64 {
	return h.min
}

// MaxBound returns the upper domain bound.
func (h *Histogram) MaxBound() float64 {
	return h.max
}

// BinCount returns the number of bins.
func (h *Histogram) BinCount() int {
	return len(h.counts)
}

// TotalCount returns the number of samples added, equal to the sum of counts.
func (h *Histogram) TotalCount() int {
	return h.total
}

// BinRange returns the nominal interval [min+i*w, min+(i+1)*w) of bin i, where
// w is BinWidth. The interval is the geometry the percentile estimator
// interpolates over. It is not the set of samples counted in bin i: AddValue
// assigns with a (binCount-1) scale, so bin i counts samples in
// [min+i*s, min+(i+1)*s) with s = (max-min)/(binCount-1), and the last bin
// counts max and everything clamped above it.
func (h *Histogram) BinRange(i int) (lower, upper float64) {
	lower = h.min + float64(i)*h.width

	return lower, lower + h.width
}
