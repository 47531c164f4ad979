package ensemble_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

func TestCalculateStatisticsCurves_Canonical(t *testing.T) {
	t.Parallel()

	got := ensemble.CalculateStatisticsCurves(canonicalSeries(), ensemble.Regular)

	require.True(t, got.IsDefined())
	assert.InDelta(t, -76092.8157632591000, got.P10, regressionDelta)
	assert.InDelta(t, 6391.979999097290, got.P50, regressionDelta)
	assert.InDelta(t, 96161.7546348456000, got.P90, regressionDelta)
	assert.InDelta(t, canonicalMean, got.Mean, regressionDelta)
}

func TestCalculateStatisticsCurves_Switched(t *testing.T) {
	t.Parallel()

	got := ensemble.CalculateStatisticsCurves(canonicalSeries(), ensemble.Switched)

	assert.InDelta(t, 96161.7546348456000, got.P10, regressionDelta)
	assert.InDelta(t, -76092.8157632591000, got.P90, regressionDelta)
}

func TestCalculateStatisticsCurves_Undefined(t *testing.T) {
	t.Parallel()

	got := ensemble.CalculateStatisticsCurves([]float64{ensemble.Undefined}, ensemble.Regular)

	assert.False(t, got.IsDefined())
	assert.True(t, math.IsNaN(got.Mean))
}

func TestCalculateEnsembleCurves(t *testing.T) {
	t.Parallel()

	realizations := [][]float64{
		{1, 10, ensemble.Undefined},
		{2, 20, ensemble.Undefined},
		{3, 30, ensemble.Undefined},
		{4, 40, ensemble.Undefined},
	}

	curves, err := ensemble.CalculateEnsembleCurves(realizations, ensemble.Regular)
	require.NoError(t, err)
	require.Len(t, curves, 3)

	assert.InDelta(t, 1.0, curves[0].P10, 0)
	assert.InDelta(t, 2.0, curves[0].P50, 0)
	assert.InDelta(t, 4.0, curves[0].P90, 0)
	assert.InDelta(t, 2.5, curves[0].Mean, 1e-12)
	assert.InDelta(t, 25.0, curves[1].Mean, 1e-12)
	assert.False(t, curves[2].IsDefined())

	assert.InDelta(t, 1.0, realizations[0][0], 0, "input is not modified")
}

func TestCalculateEnsembleCurves_Ragged(t *testing.T) {
	t.Parallel()

	_, err := ensemble.CalculateEnsembleCurves([][]float64{{1, 2}, {3}}, ensemble.Regular)

	require.ErrorIs(t, err, ensemble.ErrRaggedEnsemble)
}

func TestCalculateEnsembleCurves_Empty(t *testing.T) {
	t.Parallel()

	curves, err := ensemble.CalculateEnsembleCurves(nil, ensemble.Regular)

	require.NoError(t, err)
	assert.Empty(t, curves)
}
