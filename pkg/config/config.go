package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

// Histogram bounds modes.
const (
	// BoundsData spans the histogram over the min and max of the input.
	BoundsData = "data"
	// BoundsFixed uses histogram.min and histogram.max.
	BoundsFixed = "fixed"
)

// Percentile methods.
const (
	MethodNearestRank  = "nearest_rank"
	MethodInterpolated = "interpolated"
)

// Output formats.
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// Sentinel validation errors.
var (
	ErrInvalidBinCount         = errors.New("histogram bin count must be positive")
	ErrTooManyBins             = errors.New("histogram bin count exceeds limit")
	ErrInvalidBoundsMode       = errors.New("histogram bounds must be data or fixed")
	ErrInvalidFixedBounds      = errors.New("fixed histogram max must be greater than min")
	ErrInvalidPercentile       = errors.New("percentile position must be in [0, 100]")
	ErrInvalidPercentileStyle  = errors.New("percentile style must be regular or switched")
	ErrInvalidPercentileMethod = errors.New("percentile method must be nearest_rank or interpolated")
	ErrInvalidOutputFormat     = errors.New("unknown output format")
	ErrInvalidLogLevel         = errors.New("unknown log level")
)

// Config is the top-level configuration struct for ensemblestat.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Histogram   HistogramConfig   `mapstructure:"histogram"`
	Percentiles PercentilesConfig `mapstructure:"percentiles"`
	Output      OutputConfig      `mapstructure:"output"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// HistogramConfig holds histogram construction parameters.
type HistogramConfig struct {
	BinCount int     `mapstructure:"bin_count"`
	Bounds   string  `mapstructure:"bounds"`
	Min      float64 `mapstructure:"min"`
	Max      float64 `mapstructure:"max"`
}

// PercentilesConfig holds percentile request settings.
type PercentilesConfig struct {
	Positions []float64 `mapstructure:"positions"`
	Style     string    `mapstructure:"style"`
	Method    string    `mapstructure:"method"`
}

// OutputConfig holds report encoding settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// Validate checks every section and returns the first violation.
func (c *Config) Validate() error {
	histErr := c.validateHistogram()
	if histErr != nil {
		return histErr
	}

	pctErr := c.validatePercentiles()
	if pctErr != nil {
		return pctErr
	}

	if !slices.Contains([]string{FormatTable, FormatJSON, FormatYAML, FormatMsgpack}, c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}

	_, levelErr := c.LogLevel()

	return levelErr
}

func (c *Config) validateHistogram() error {
	if c.Histogram.BinCount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBinCount, c.Histogram.BinCount)
	}

	if c.Histogram.BinCount > MaxHistogramBinCount {
		return fmt.Errorf("%w: %d > %d", ErrTooManyBins, c.Histogram.BinCount, MaxHistogramBinCount)
	}

	switch c.Histogram.Bounds {
	case BoundsData:
		return nil
	case BoundsFixed:
		if !(c.Histogram.Max > c.Histogram.Min) {
			return fmt.Errorf("%w: [%g, %g]", ErrInvalidFixedBounds, c.Histogram.Min, c.Histogram.Max)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBoundsMode, c.Histogram.Bounds)
	}
}

func (c *Config) validatePercentiles() error {
	for _, p := range c.Percentiles.Positions {
		if p < ensemble.MinPosition || p > ensemble.MaxPosition {
			return fmt.Errorf("%w: %g", ErrInvalidPercentile, p)
		}
	}

	if _, ok := ensemble.ParsePercentileStyle(c.Percentiles.Style); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPercentileStyle, c.Percentiles.Style)
	}

	if c.Percentiles.Method != MethodNearestRank && c.Percentiles.Method != MethodInterpolated {
		return fmt.Errorf("%w: %q", ErrInvalidPercentileMethod, c.Percentiles.Method)
	}

	return nil
}

// PercentileStyle returns the configured style. Validate guarantees the name
// is known.
func (c *Config) PercentileStyle() ensemble.PercentileStyle {
	style, _ := ensemble.ParsePercentileStyle(c.Percentiles.Style)

	return style
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}
