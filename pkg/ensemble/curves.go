package ensemble

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/stats"
)

// ErrRaggedEnsemble is returned when realizations have different lengths.
var ErrRaggedEnsemble = errors.New("realizations must have equal length")

// Curve percentile positions.
const (
	curveP10 = 10.0
	curveP50 = 50.0
	curveP90 = 90.0
)

// CurveStatistics summarizes one time step of an ensemble.
type CurveStatistics struct {
	P10  float64
	P50  float64
	P90  float64
	Mean float64
}

// CalculateStatisticsCurves returns nearest-rank P10/P50/P90 and the mean of
// the valid samples of values. All fields are NaN when no sample is valid.
func CalculateStatisticsCurves(values []float64, style PercentileStyle) CurveStatistics {
	filtered := Filter(values)
	pcts := CalculateNearestRankPercentiles(filtered, []float64{curveP10, curveP50, curveP90}, style)

	return CurveStatistics{
		P10:  pcts[0],
		P50:  pcts[1],
		P90:  pcts[2],
		Mean: stats.Mean(filtered),
	}
}

// CalculateEnsembleCurves aggregates realizations column-wise: element t of
// the result summarizes realizations[*][t].
func CalculateEnsembleCurves(realizations [][]float64, style PercentileStyle) ([]CurveStatistics, error) {
	if len(realizations) == 0 {
		return nil, nil
	}

	steps := len(realizations[0])

	for i, r := range realizations {
		if len(r) != steps {
			return nil, fmt.Errorf("%w: realization %d has %d values, want %d", ErrRaggedEnsemble, i, len(r), steps)
		}
	}

	curves := make([]CurveStatistics, steps)
	column := make([]float64, len(realizations))

	for t := range steps {
		for i, r := range realizations {
			column[i] = r[t]
		}

		curves[t] = CalculateStatisticsCurves(column, style)
	}

	return curves, nil
}

// IsDefined reports whether every field of c holds a value.
func (c CurveStatistics) IsDefined() bool {
	return !math.IsNaN(c.P10) && !math.IsNaN(c.P50) && !math.IsNaN(c.P90) && !math.IsNaN(c.Mean)
}
