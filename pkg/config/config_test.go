package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/config"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())
}

func TestValidate_FixedBounds(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Histogram.Bounds = config.BoundsFixed
	cfg.Histogram.Min = 1
	cfg.Histogram.Max = 1

	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidFixedBounds)

	cfg.Histogram.Max = 2

	assert.NoError(t, cfg.Validate())
}

func TestValidate_BinCountLimit(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Histogram.BinCount = config.MaxHistogramBinCount

	require.NoError(t, cfg.Validate())

	cfg.Histogram.BinCount = 1 << 62

	assert.ErrorIs(t, cfg.Validate(), config.ErrTooManyBins)
}

func TestValidate_PercentileBoundsInclusive(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Percentiles.Positions = []float64{0, 100}

	require.NoError(t, cfg.Validate())

	cfg.Percentiles.Positions = []float64{-0.1}

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidPercentile)
}

func TestLogLevel_Default(t *testing.T) {
	t.Parallel()

	level, err := config.Default().LogLevel()

	require.NoError(t, err)
	assert.Equal(t, "INFO", level.String())
}
