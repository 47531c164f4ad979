package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/mcp"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
)

const (
	metricsPath           = "/metrics"
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownPeriod = 5 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(opts *GlobalOptions) *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the ensemble engine as tools that AI agents can
discover and invoke:
  - ensemble_statistics: count, min, max, sum, range, mean, std dev
  - ensemble_percentiles: exact nearest-rank or interpolated percentiles
  - ensemble_histogram: histogram bins and percentile estimates`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			if debug {
				opts.Verbose = true
			}

			return runMCP(cobraCmd, opts, debug, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging and full trace sampling")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default from telemetry.prometheus_addr)")

	return cmd
}

func runMCP(cmd *cobra.Command, opts *GlobalOptions, debug bool, metricsAddr string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if metricsAddr == "" {
		metricsAddr = cfg.Telemetry.PrometheusAddr
	}

	obsCfg, err := observabilityConfig(cfg, opts, observability.ModeMCP)
	if err != nil {
		return err
	}

	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.LogJSON = true
	obsCfg.DebugTrace = debug
	obsCfg.Prometheus = metricsAddr != ""

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return err
	}

	engine, err := observability.NewEngineMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	if metricsAddr != "" {
		stop, serveErr := serveMetrics(ctx, metricsAddr, providers, red)
		if serveErr != nil {
			return serveErr
		}
		defer stop()
	}

	srv := mcp.NewServer(mcp.ServerDeps{Logger: providers.Logger, Metrics: red, Engine: engine, Tracer: providers.Tracer})

	providers.Logger.InfoContext(ctx, "mcp server starting", "tools", srv.ListToolNames())

	return srv.Run(ctx)
}

// serveMetrics exposes the Prometheus handler on addr until the returned
// stop function is called.
func serveMetrics(
	ctx context.Context, addr string, providers observability.Providers, red *observability.REDMetrics,
) (func(), error) {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on metrics address: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, providers.MetricsHandler)

	httpSrv := &http.Server{
		Handler:           observability.HTTPMiddleware(providers.Tracer, red, mux),
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		serveErr := httpSrv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	providers.Logger.InfoContext(ctx, "metrics server listening", "addr", listener.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
		defer cancel()

		shutdownErr := httpSrv.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			providers.Logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}
