// Package mcp implements a Model Context Protocol server exposing the
// ensemble aggregation engine as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/aggregate"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "ensemblestat"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Engine is an optional engine metrics recorder.
	Engine *observability.EngineMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// SampleCacheBytes bounds the sorted sample cache shared by percentile
	// calls. Zero uses aggregate.DefaultSampleCacheBytes.
	SampleCacheBytes int64
}

// Server wraps the MCP SDK server with the ensemble tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	agg     *aggregate.Aggregator
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	mu      sync.RWMutex
	tools   []string
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	cacheBytes := deps.SampleCacheBytes
	if cacheBytes <= 0 {
		cacheBytes = aggregate.DefaultSampleCacheBytes
	}

	srv := &Server{
		inner:   inner,
		agg:     aggregate.New(deps.Engine).WithSampleCache(aggregate.NewSampleCache(cacheBytes)),
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameStatistics, statisticsToolDescription, s.handleStatistics)
	addTool(s, ToolNamePercentiles, percentilesToolDescription, s.handlePercentiles)
	addTool(s, ToolNameHistogram, histogramToolDescription, s.handleHistogram)
}

// toolHandler is the typed handler signature shared by all tools.
type toolHandler[Input any] func(context.Context, *mcpsdk.CallToolRequest, Input) (
	*mcpsdk.CallToolResult, ToolOutput, error)

func addTool[Input any](s *Server, name, description string, handler toolHandler[Input]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, mcpsdk.ToolHandlerFor[Input, ToolOutput](withMetrics(s.metrics, name, withTracing(s.tracer, name, handler))))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// mcpSpanPrefix is the prefix for MCP tool span names and RED operations.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps a tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](tracer trace.Tracer, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if err != nil || (result != nil && result.IsError) {
			span.SetStatus(codes.Error, "tool call failed")
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics, toolName string, handler toolHandler[Input],
) toolHandler[Input] {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		finish := metrics.Begin(ctx, mcpSpanPrefix+toolName)

		result, output, err := handler(ctx, req, input)

		finish(observability.StatusOf(err != nil || (result != nil && result.IsError)))

		return result, output, err
	}
}

// Tool description constants.
const (
	statisticsToolDescription = "Compute count, min, max, sum, range, mean and population standard deviation " +
		"of an ensemble sample set. Null entries are undefined samples and are ignored."

	percentilesToolDescription = "Compute exact percentiles of an ensemble sample set. " +
		"Positions are percentages in [0, 100]; method is nearest_rank (default) or interpolated; " +
		"style switched reports the petroleum convention where P90 is the low case."

	histogramToolDescription = "Bin an ensemble sample set into a fixed-width histogram and estimate " +
		"percentiles from the bins. Bounds default to the sample min and max; " +
		"fractions are cumulative fractions in [0, 1]."
)
