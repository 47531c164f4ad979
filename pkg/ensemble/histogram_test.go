package ensemble_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

const canonicalBins = 100

func canonicalHistogram(t *testing.T) *ensemble.Histogram {
	t.Helper()

	values := canonicalSeries()
	basic := ensemble.CalculateBasicStatistics(values)

	hist, err := ensemble.NewHistogram(basic.Min, basic.Max, canonicalBins)
	require.NoError(t, err)

	hist.AddData(values)

	return hist
}

func TestNewHistogram_InvalidConstruction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		min, max float64
		bins     int
		wantErr  error
	}{
		{name: "max_equals_min", min: 1, max: 1, bins: 10, wantErr: ensemble.ErrInvalidBounds},
		{name: "max_below_min", min: 2, max: 1, bins: 10, wantErr: ensemble.ErrInvalidBounds},
		{name: "nan_bound", min: math.NaN(), max: 1, bins: 10, wantErr: ensemble.ErrInvalidBounds},
		{name: "infinite_bound", min: 0, max: ensemble.Undefined, bins: 10, wantErr: ensemble.ErrInvalidBounds},
		{name: "zero_bins", min: 0, max: 1, bins: 0, wantErr: ensemble.ErrInvalidBinCount},
		{name: "negative_bins", min: 0, max: 1, bins: -3, wantErr: ensemble.ErrInvalidBinCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hist, err := ensemble.NewHistogram(tt.min, tt.max, tt.bins)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, hist)
		})
	}
}

func TestMustNewHistogram_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { ensemble.MustNewHistogram(5, 5, 10) })
	assert.NotPanics(t, func() { ensemble.MustNewHistogram(0, 5, 10) })
}

func TestHistogram_Construction(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(-10, 10, 4)

	assert.Equal(t, 4, hist.BinCount())
	assert.InDelta(t, 5.0, hist.BinWidth(), 0)
	assert.InDelta(t, -10.0, hist.MinBound(), 0)
	assert.InDelta(t, 10.0, hist.MaxBound(), 0)
	assert.Equal(t, []int{0, 0, 0, 0}, hist.Counts())
	assert.Zero(t, hist.TotalCount())

	lower, upper := hist.BinRange(1)
	assert.InDelta(t, -5.0, lower, 0)
	assert.InDelta(t, 0.0, upper, 0)
}

func TestHistogram_BinRangeIsNominal(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 10, 10)
	hist.AddData([]float64{0.5, 1, 1.05, 9.5, 10})

	lower, upper := hist.BinRange(1)
	assert.InDelta(t, 1.0, lower, 0)
	assert.InDelta(t, 2.0, upper, 0)

	// 1 and 1.05 lie in the nominal range of bin 1 but are counted in bin 0.
	assert.Equal(t, []int{3, 0, 0, 0, 0, 0, 0, 0, 1, 1}, hist.Counts())
}

func TestHistogram_AddData_CountsValidSamples(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)
	counts := hist.Counts()

	total := 0
	for _, c := range counts {
		total += c
	}

	assert.Equal(t, canonicalValid, hist.TotalCount())
	assert.Equal(t, canonicalValid, total)
	assert.Equal(t, 1, counts[0], "minimum lands in the first bin")
	assert.Equal(t, 1, counts[canonicalBins-1], "maximum lands in the last bin")
}

func TestHistogram_AddData_Reentrant(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 10, 10)

	hist.AddData([]float64{0, 5})
	hist.AddData([]float64{10, ensemble.Undefined})
	hist.AddValue(math.NaN())
	hist.AddValue(5)

	assert.Equal(t, 4, hist.TotalCount())
	assert.Equal(t, []int{1, 0, 0, 0, 2, 0, 0, 0, 0, 1}, hist.Counts())
}

func TestHistogram_OutOfRangeClampsToBoundaryBin(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 10, 5)

	hist.AddData([]float64{-1e308, -0.5, 10.5, 1e308})

	counts := hist.Counts()

	assert.Equal(t, 4, hist.TotalCount())
	assert.Equal(t, 2, counts[0])
	assert.Equal(t, 2, counts[4])
}

func TestHistogram_CountsIsCopy(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 1, 2)
	hist.AddValue(0)

	counts := hist.Counts()
	counts[0] = 99

	assert.Equal(t, 1, hist.Counts()[0])
}

func TestHistogram_CalculatePercentil_Canonical(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)

	assert.InDelta(t, -76273.240559989776, hist.CalculatePercentil(0.1), regressionDelta)
	assert.InDelta(t, 5312.1312871307755, hist.CalculatePercentil(0.5), regressionDelta)
	assert.InDelta(t, 94818.413022321271, hist.CalculatePercentil(0.9), regressionDelta)
}

func TestHistogram_CalculatePercentil_Extremes(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)
	width := hist.BinWidth()

	assert.InDelta(t, hist.MinBound(), hist.CalculatePercentil(0), width)
	assert.InDelta(t, hist.MaxBound(), hist.CalculatePercentil(1), width)
}

func TestHistogram_CalculatePercentil_OutOfRangeClamps(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)

	assert.InDelta(t, hist.CalculatePercentil(0), hist.CalculatePercentil(-0.5), 0)
	assert.InDelta(t, hist.CalculatePercentil(1), hist.CalculatePercentil(7), 0)
}

func TestHistogram_CalculatePercentil_EmptyLeadingBin(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 10, 10)
	hist.AddData([]float64{9.5, 9.6})

	assert.InDelta(t, 0.0, hist.CalculatePercentil(0), 0, "empty first bin yields its lower bound")
	assert.InDelta(t, 8.5, hist.CalculatePercentil(0.5), 1e-12)
}

func TestHistogram_CalculatePercentil_NaNFraction(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)

	assert.True(t, math.IsNaN(hist.CalculatePercentil(math.NaN())))

	got := hist.CalculatePercentiles([]float64{math.NaN(), 0.5}, ensemble.Switched)
	assert.True(t, math.IsNaN(got[0]))
	assert.False(t, math.IsNaN(got[1]))
}

func TestHistogram_CalculatePercentil_Empty(t *testing.T) {
	t.Parallel()

	hist := ensemble.MustNewHistogram(0, 1, 10)

	assert.True(t, math.IsNaN(hist.CalculatePercentil(0.5)))
}

func TestHistogram_CalculatePercentil_ConvergesWithBins(t *testing.T) {
	t.Parallel()

	values := make([]float64, 1001)
	for i := range values {
		values[i] = float64(i)
	}

	coarse := ensemble.MustNewHistogram(0, 1000, 10)
	fine := ensemble.MustNewHistogram(0, 1000, 1000)

	coarse.AddData(values)
	fine.AddData(values)

	exact := ensemble.CalculateNearestRankPercentiles(values, []float64{50}, ensemble.Regular)[0]

	assert.InDelta(t, exact, fine.CalculatePercentil(0.5), fine.BinWidth()*2)
	assert.InDelta(t, exact, coarse.CalculatePercentil(0.5), coarse.BinWidth())
}

func TestHistogram_CalculatePercentiles_Style(t *testing.T) {
	t.Parallel()

	hist := canonicalHistogram(t)

	regular := hist.CalculatePercentiles([]float64{0.1, 0.9}, ensemble.Regular)
	switched := hist.CalculatePercentiles([]float64{0.9, 0.1}, ensemble.Switched)

	require.Len(t, switched, 2)
	assert.InDelta(t, regular[0], switched[0], regressionDelta)
	assert.InDelta(t, regular[1], switched[1], regressionDelta)
}

func TestHistogram_Deterministic(t *testing.T) {
	t.Parallel()

	first := canonicalHistogram(t)
	second := canonicalHistogram(t)

	assert.Equal(t, first.Counts(), second.Counts())

	for _, f := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1} {
		assert.InDelta(t, first.CalculatePercentil(f), second.CalculatePercentil(f), 0)
	}
}
