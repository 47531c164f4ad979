package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/aggregate"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/config"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ingest"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/observability"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/report"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/version"
)

// cliOpPrefix prefixes CLI span names and RED operations.
const cliOpPrefix = "cli."

// session is the per-invocation runtime: resolved config, telemetry and the
// aggregator wired to it.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	engine    *observability.EngineMetrics
	agg       *aggregate.Aggregator
	logger    *slog.Logger
}

// loadConfig reads the config file and applies the --format override.
func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Format != "" {
		cfg.Output.Format = opts.Format

		err = cfg.Validate()
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func openSession(cmd *cobra.Command, opts *GlobalOptions, mode observability.AppMode) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	obsCfg, err := observabilityConfig(cfg, opts, mode)
	if err != nil {
		return nil, err
	}

	obsCfg.LogOutput = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	engine, err := observability.NewEngineMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &session{
		cfg:       cfg,
		providers: providers,
		red:       red,
		engine:    engine,
		agg:       aggregate.New(engine),
		logger:    providers.Logger,
	}, nil
}

func observabilityConfig(cfg *config.Config, opts *GlobalOptions, mode observability.AppMode) (observability.Config, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case opts.Quiet:
		level = slog.LevelError
	case opts.Verbose:
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.SampleRatio = observability.ParseSampleRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	obsCfg.Environment = os.Getenv("ENSEMBLESTAT_ENV")

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	return obsCfg, nil
}

func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.logger.Warn("observability shutdown failed", "error", err)
	}
}

// track runs fn inside a span and records it as a RED request.
func (s *session) track(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.providers.Tracer.Start(ctx, cliOpPrefix+op,
		trace.WithAttributes(attribute.String("ensemblestat.command", op)),
	)
	defer span.End()

	finish := s.red.Begin(ctx, cliOpPrefix+op)

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	finish(observability.StatusOf(err != nil))

	return err
}

func (s *session) load(ctx context.Context, cmd *cobra.Command, path string) (*ingest.Document, error) {
	doc, err := ingest.Load(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	total, undefined := doc.SampleCount()

	s.logger.DebugContext(ctx, "ensemble document loaded",
		"path", path, "name", doc.Name, "series", len(doc.Series), "samples", total, "undefined", undefined)

	return doc, nil
}

func (s *session) write(cmd *cobra.Command, summary *report.Summary) error {
	return report.Write(cmd.OutOrStdout(), s.cfg.Output.Format, summary)
}

// runWithSession opens a session, runs fn under tracking and closes it.
func runWithSession(
	cmd *cobra.Command, opts *GlobalOptions, op string, fn func(context.Context, *session) error,
) error {
	sess, err := openSession(cmd, opts, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	return sess.track(commandContext(cmd), op, func(ctx context.Context) error {
		return fn(ctx, sess)
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
