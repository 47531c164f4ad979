package ensemble

import "math"

// MinMaxAccumulator tracks the extrema of the valid samples it has seen.
type MinMaxAccumulator struct {
	minVal float64
	maxVal float64
	seen   bool
}

// AddData adds every valid sample of values.
func (a *MinMaxAccumulator) AddData(values []float64) {
	for _, v := range values {
		a.AddValue(v)
	}
}

// AddValue adds one sample, ignoring invalid ones.
func (a *MinMaxAccumulator) AddValue(v float64) {
	if !IsValid(v) {
		return
	}

	if !a.seen {
		a.minVal, a.maxVal, a.seen = v, v, true

		return
	}

	a.minVal = min(a.minVal, v)
	a.maxVal = max(a.maxVal, v)
}

// Result returns the extrema, NaN when nothing valid was added.
func (a *MinMaxAccumulator) Result() (minVal, maxVal float64) {
	if !a.seen {
		return math.NaN(), math.NaN()
	}

	return a.minVal, a.maxVal
}

// PosNegAccumulator tracks the smallest positive and the largest negative
// valid sample, the bounds a logarithmic color legend needs.
type PosNegAccumulator struct {
	pos float64
	neg float64
}

// NewPosNegAccumulator returns an accumulator with no positive or negative
// sample seen.
func NewPosNegAccumulator() *PosNegAccumulator {
	return &PosNegAccumulator{pos: math.Inf(1), neg: math.Inf(-1)}
}

// AddData adds every valid sample of values.
func (a *PosNegAccumulator) AddData(values []float64) {
	for _, v := range values {
		a.AddValue(v)
	}
}

// AddValue adds one sample. Zero and invalid samples are ignored.
func (a *PosNegAccumulator) AddValue(v float64) {
	if !IsValid(v) {
		return
	}

	if v > 0 && v < a.pos {
		a.pos = v
	}

	if v < 0 && v > a.neg {
		a.neg = v
	}
}

// Result returns the smallest positive and the largest negative sample.
// Either is NaN when no such sample was added.
func (a *PosNegAccumulator) Result() (smallestPositive, largestNegative float64) {
	smallestPositive, largestNegative = a.pos, a.neg

	if math.IsInf(smallestPositive, 1) {
		smallestPositive = math.NaN()
	}

	if math.IsInf(largestNegative, -1) {
		largestNegative = math.NaN()
	}

	return smallestPositive, largestNegative
}
