package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/aggregate"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/config"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ingest"
)

// Tool name constants.
const (
	ToolNameStatistics  = "ensemble_statistics"
	ToolNamePercentiles = "ensemble_percentiles"
	ToolNameHistogram   = "ensemble_histogram"
)

// Input limits of one tool call.
const (
	// MaxValues is the maximum number of samples accepted.
	MaxValues = 1 << 20
	// MaxBinCount is the maximum histogram bin count accepted.
	MaxBinCount = config.MaxHistogramBinCount
)

// Sentinel errors for tool input validation.
var (
	// ErrTooManyValues indicates the values array exceeds MaxValues.
	ErrTooManyValues = errors.New("values exceed maximum length")
	// ErrTooManyBins indicates bin_count exceeds MaxBinCount.
	ErrTooManyBins = errors.New("bin_count exceeds maximum")
	// ErrUnknownStyle indicates the style parameter is not regular or switched.
	ErrUnknownStyle = errors.New("style must be regular or switched")
	// ErrPartialBounds indicates only one fixed histogram bound was given.
	ErrPartialBounds = errors.New("min and max must be given together")
)

// Input types (auto-generate JSON schemas via struct tags).

// StatisticsInput is the input schema for the ensemble_statistics tool.
type StatisticsInput struct {
	Name   string     `json:"name,omitempty" jsonschema:"optional label for the sample set"`
	Values []*float64 `json:"values"         jsonschema:"sample values; null marks an undefined sample"`
}

// PercentilesInput is the input schema for the ensemble_percentiles tool.
type PercentilesInput struct {
	Name      string     `json:"name,omitempty"      jsonschema:"optional label for the sample set"`
	Method    string     `json:"method,omitempty"    jsonschema:"nearest_rank (default) or interpolated"`
	Style     string     `json:"style,omitempty"     jsonschema:"regular (default) or switched"`
	Positions []float64  `json:"positions,omitempty" jsonschema:"percentile positions in [0, 100] (default: 10 50 90)"`
	Values    []*float64 `json:"values"              jsonschema:"sample values; null marks an undefined sample"`
}

// HistogramInput is the input schema for the ensemble_histogram tool.
type HistogramInput struct {
	Min       *float64   `json:"min,omitempty"       jsonschema:"fixed lower bound (requires max)"`
	Max       *float64   `json:"max,omitempty"       jsonschema:"fixed upper bound (requires min)"`
	Name      string     `json:"name,omitempty"      jsonschema:"optional label for the sample set"`
	Style     string     `json:"style,omitempty"     jsonschema:"regular (default) or switched"`
	Fractions []float64  `json:"fractions,omitempty" jsonschema:"cumulative fractions in [0, 1] to estimate (default: 0.1 0.5 0.9)"`
	Values    []*float64 `json:"values"              jsonschema:"sample values; null marks an undefined sample"`
	BinCount  int        `json:"bin_count,omitempty" jsonschema:"number of bins, at most 65536 (default: 100)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleStatistics(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input StatisticsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	values, err := samples(input.Values)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(s.agg.Statistics(ctx, input.Name, values))
}

func (s *Server) handlePercentiles(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input PercentilesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	values, err := samples(input.Values)
	if err != nil {
		return errorResult(err)
	}

	style, err := parseStyle(input.Style)
	if err != nil {
		return errorResult(err)
	}

	summary, err := s.agg.Percentiles(ctx, input.Name, values, aggregate.PercentileOptions{
		Positions: input.Positions,
		Method:    input.Method,
		Style:     style,
	})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(summary)
}

func (s *Server) handleHistogram(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input HistogramInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	values, err := samples(input.Values)
	if err != nil {
		return errorResult(err)
	}

	style, err := parseStyle(input.Style)
	if err != nil {
		return errorResult(err)
	}

	if (input.Min == nil) != (input.Max == nil) {
		return errorResult(ErrPartialBounds)
	}

	if input.BinCount > MaxBinCount {
		return errorResult(fmt.Errorf("%w: %d (max %d)", ErrTooManyBins, input.BinCount, MaxBinCount))
	}

	summary, _, err := s.agg.Histogram(ctx, input.Name, values, aggregate.HistogramOptions{
		Min:       input.Min,
		Max:       input.Max,
		Fractions: input.Fractions,
		BinCount:  input.BinCount,
		Style:     style,
	})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(summary)
}

// samples converts tool values to engine samples, null entries undefined.
func samples(values []*float64) ([]ensemble.Sample, error) {
	if len(values) > MaxValues {
		return nil, fmt.Errorf("%w: %d values (max %d)", ErrTooManyValues, len(values), MaxValues)
	}

	return ingest.Series{Values: values}.Samples(), nil
}

func parseStyle(name string) (ensemble.PercentileStyle, error) {
	style, ok := ensemble.ParsePercentileStyle(name)
	if !ok {
		return ensemble.Regular, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}

	return style, nil
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
