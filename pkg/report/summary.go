// Package report turns engine results into tables, structured documents and
// HTML charts.
package report

import (
	"encoding/json"
	"math"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

// Value is a statistic that may be undefined. Undefined values (NaN or ±Inf)
// encode as null in JSON and YAML.
type Value float64

// Defined reports whether v holds a finite number.
func (v Value) Defined() bool {
	return ensemble.IsValid(float64(v))
}

// MarshalJSON implements [json.Marshaler].
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined() {
		return []byte("null"), nil
	}

	return json.Marshal(float64(v))
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	if !v.Defined() {
		return nil, nil //nolint:nilnil // null is the encoding of an undefined value
	}

	return float64(v), nil
}

// Stats mirrors [ensemble.BasicStats].
type Stats struct {
	Count  int   `json:"count"   msgpack:"count"   yaml:"count"`
	Min    Value `json:"min"     msgpack:"min"     yaml:"min"`
	Max    Value `json:"max"     msgpack:"max"     yaml:"max"`
	Sum    Value `json:"sum"     msgpack:"sum"     yaml:"sum"`
	Range  Value `json:"range"   msgpack:"range"   yaml:"range"`
	Mean   Value `json:"mean"    msgpack:"mean"    yaml:"mean"`
	StdDev Value `json:"std_dev" msgpack:"std_dev" yaml:"std_dev"`
}

// Percentile is one requested position and its value. Position is a
// percentage for exact percentiles and a fraction for histogram estimates.
type Percentile struct {
	Position float64 `json:"position" msgpack:"position" yaml:"position"`
	Value    Value   `json:"value"    msgpack:"value"    yaml:"value"`
}

// Bin is one histogram bin. Lower and Upper are the nominal bounds
// min+i*BinWidth and min+(i+1)*BinWidth used by the estimator. Count is the
// number of samples assigned to the bin, and assignment scales by
// (bins-1)/(max-min): bin i counts samples in
// [min+i*(max-min)/(bins-1), min+(i+1)*(max-min)/(bins-1)), and the last bin
// also counts max. Count therefore need not match the samples that fall
// between Lower and Upper.
type Bin struct {
	Lower Value `json:"lower" msgpack:"lower" yaml:"lower"`
	Upper Value `json:"upper" msgpack:"upper" yaml:"upper"`
	Count int   `json:"count" msgpack:"count" yaml:"count"`
}

// Histogram summarises an [ensemble.Histogram] and the estimates taken from it.
// Bins carry nominal bounds, see [Bin].
//
// SmallestPositive and LargestNegative are the log-axis hints of the binned
// samples: the valid sample closest to zero on each side, undefined when the
// side is empty. A log axis can be drawn when SmallestPositive is defined and
// LargestNegative is not.
type Histogram struct {
	Min              Value        `json:"min"               msgpack:"min"               yaml:"min"`
	Max              Value        `json:"max"               msgpack:"max"               yaml:"max"`
	BinWidth         Value        `json:"bin_width"         msgpack:"bin_width"         yaml:"bin_width"`
	Total            int          `json:"total"             msgpack:"total"             yaml:"total"`
	Bins             []Bin        `json:"bins"              msgpack:"bins"              yaml:"bins"`
	Estimates        []Percentile `json:"estimates"         msgpack:"estimates"         yaml:"estimates"`
	SmallestPositive Value        `json:"smallest_positive" msgpack:"smallest_positive" yaml:"smallest_positive"`
	LargestNegative  Value        `json:"largest_negative"  msgpack:"largest_negative"  yaml:"largest_negative"`
}

// Curve is one time step of ensemble statistics curves.
type Curve struct {
	Step int   `json:"step" msgpack:"step" yaml:"step"`
	P10  Value `json:"p10"  msgpack:"p10"  yaml:"p10"`
	P50  Value `json:"p50"  msgpack:"p50"  yaml:"p50"`
	P90  Value `json:"p90"  msgpack:"p90"  yaml:"p90"`
	Mean Value `json:"mean" msgpack:"mean" yaml:"mean"`
}

// Summary is the document every output format renders. Sections that were
// not computed are left empty and omitted.
type Summary struct {
	Name        string       `json:"name,omitempty"        msgpack:"name"        yaml:"name,omitempty"`
	Samples     int          `json:"samples"               msgpack:"samples"     yaml:"samples"`
	Undefined   int          `json:"undefined"             msgpack:"undefined"   yaml:"undefined"`
	Stats       *Stats       `json:"stats,omitempty"       msgpack:"stats"       yaml:"stats,omitempty"`
	Method      string       `json:"method,omitempty"      msgpack:"method"      yaml:"method,omitempty"`
	Style       string       `json:"style,omitempty"       msgpack:"style"       yaml:"style,omitempty"`
	Percentiles []Percentile `json:"percentiles,omitempty" msgpack:"percentiles" yaml:"percentiles,omitempty"`
	Histogram   *Histogram   `json:"histogram,omitempty"   msgpack:"histogram"   yaml:"histogram,omitempty"`
	Curves      []Curve      `json:"curves,omitempty"      msgpack:"curves"      yaml:"curves,omitempty"`
}

// NewStats converts engine statistics.
func NewStats(b ensemble.BasicStats) *Stats {
	return &Stats{
		Count:  b.Count,
		Min:    Value(b.Min),
		Max:    Value(b.Max),
		Sum:    Value(b.Sum),
		Range:  Value(b.Range),
		Mean:   Value(b.Mean),
		StdDev: Value(b.StdDev),
	}
}

// NewPercentiles pairs positions with their computed values.
func NewPercentiles(positions, values []float64) []Percentile {
	out := make([]Percentile, min(len(positions), len(values)))

	for i := range out {
		out[i] = Percentile{Position: positions[i], Value: Value(values[i])}
	}

	return out
}

// NewHistogram converts h and attaches estimates taken at fractions.
func NewHistogram(h *ensemble.Histogram, fractions, estimates []float64) *Histogram {
	counts := h.Counts()
	bins := make([]Bin, len(counts))

	for i, c := range counts {
		lower, upper := h.BinRange(i)
		bins[i] = Bin{Lower: Value(lower), Upper: Value(upper), Count: c}
	}

	return &Histogram{
		Min:       Value(h.MinBound()),
		Max:       Value(h.MaxBound()),
		BinWidth:  Value(h.BinWidth()),
		Total:     h.TotalCount(),
		Bins:      bins,
		Estimates: NewPercentiles(fractions, estimates),

		SmallestPositive: Value(math.NaN()),
		LargestNegative:  Value(math.NaN()),
	}
}

// WithLogAxisHint sets the log-axis hints, typically the Result of an
// [ensemble.PosNegAccumulator] fed the binned samples.
func (h *Histogram) WithLogAxisHint(smallestPositive, largestNegative float64) *Histogram {
	h.SmallestPositive = Value(smallestPositive)
	h.LargestNegative = Value(largestNegative)

	return h
}

// NewCurves converts per-step curve statistics.
func NewCurves(curves []ensemble.CurveStatistics) []Curve {
	out := make([]Curve, len(curves))

	for i, c := range curves {
		out[i] = Curve{Step: i, P10: Value(c.P10), P50: Value(c.P50), P90: Value(c.P90), Mean: Value(c.Mean)}
	}

	return out
}
