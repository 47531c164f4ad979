package ensemble_test

import "github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"

// canonicalSeries is a 17-realization ensemble column with four undefined
// entries, shared by the regression tests.
func canonicalSeries() []float64 {
	undef := ensemble.Undefined

	return []float64{
		undef,
		2788.2723335651900,
		-22481.0927881701000,
		68778.6851686236000,
		-76092.8157632591000,
		6391.97999909729003,
		65930.1200169780000,
		-27696.2320267235000,
		undef,
		undef,
		96161.7546348456000,
		73875.6716288563000,
		80720.4378655615000,
		-98649.8109937874000,
		99372.9362079615000,
		undef,
		-57020.4389966513000,
	}
}

const (
	canonicalMin    = -98649.8109937874000
	canonicalMax    = 99372.9362079615000
	canonicalRange  = 198022.7472017490000
	canonicalMean   = 16313.8051759152000
	canonicalStdDev = 66104.391542887200
	canonicalValid  = 13

	regressionDelta = 1e-6
)
