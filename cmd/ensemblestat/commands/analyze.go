package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/aggregate"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/config"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/report"
)

// ErrUnknownStyle is returned for an unsupported --style value.
var ErrUnknownStyle = errors.New("style must be regular or switched")

const inputArgUsage = "<file|->"

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats " + inputArgUsage,
		Short: "Basic statistics of the pooled ensemble samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(cmd, opts, "stats", func(ctx context.Context, sess *session) error {
				doc, err := sess.load(ctx, cmd, args[0])
				if err != nil {
					return err
				}

				return sess.write(cmd, sess.agg.Statistics(ctx, doc.Name, doc.Flatten()))
			})
		},
	}
}

// percentilesFlags holds the percentiles command flags.
type percentilesFlags struct {
	positions []float64
	method    string
	style     string
}

// NewPercentilesCommand creates the percentiles command.
func NewPercentilesCommand(opts *GlobalOptions) *cobra.Command {
	flags := &percentilesFlags{}

	cmd := &cobra.Command{
		Use:   "percentiles " + inputArgUsage,
		Short: "Exact percentiles of the pooled ensemble samples",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, opts, "percentiles", func(ctx context.Context, sess *session) error {
			pctOpts, err := flags.resolve(cmd, sess.cfg)
			if err != nil {
				return err
			}

			doc, err := sess.load(ctx, cmd, args[0])
			if err != nil {
				return err
			}

			summary, err := sess.agg.Percentiles(ctx, doc.Name, doc.Flatten(), pctOpts)
			if err != nil {
				return err
			}

			return sess.write(cmd, summary)
		})
	}

	cmd.Flags().Float64SliceVar(&flags.positions, "positions", nil, "percentile positions in [0, 100] (default from config: 10,50,90)")
	cmd.Flags().StringVar(&flags.method, "method", "", "nearest_rank or interpolated (default from config)")
	cmd.Flags().StringVar(&flags.style, "style", "", "regular or switched (default from config)")

	return cmd
}

func (f *percentilesFlags) resolve(cmd *cobra.Command, cfg *config.Config) (aggregate.PercentileOptions, error) {
	resolved := aggregate.PercentileOptions{
		Positions: cfg.Percentiles.Positions,
		Method:    cfg.Percentiles.Method,
		Style:     cfg.PercentileStyle(),
	}

	if cmd.Flags().Changed("positions") {
		resolved.Positions = f.positions
	}

	if cmd.Flags().Changed("method") {
		resolved.Method = f.method
	}

	style, err := resolveStyle(cmd, f.style, cfg)
	if err != nil {
		return resolved, err
	}

	resolved.Style = style

	return resolved, nil
}

// histogramFlags holds the histogram command flags.
type histogramFlags struct {
	fractions []float64
	style     string
	htmlPath  string
	minBound  float64
	maxBound  float64
	bins      int
}

// NewHistogramCommand creates the histogram command.
func NewHistogramCommand(opts *GlobalOptions) *cobra.Command {
	flags := &histogramFlags{}

	cmd := &cobra.Command{
		Use:   "histogram " + inputArgUsage,
		Short: "Fixed-width histogram and percentile estimates from its bins",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, opts, "histogram", func(ctx context.Context, sess *session) error {
			histOpts, err := flags.resolve(cmd, sess.cfg)
			if err != nil {
				return err
			}

			doc, err := sess.load(ctx, cmd, args[0])
			if err != nil {
				return err
			}

			summary, hist, err := sess.agg.Histogram(ctx, doc.Name, doc.Flatten(), histOpts)
			if err != nil {
				return err
			}

			if flags.htmlPath != "" {
				err = writeChart(flags.htmlPath, hist, chartTitle(doc.Name))
				if err != nil {
					return err
				}

				sess.logger.InfoContext(ctx, "histogram chart written", "path", flags.htmlPath)
			}

			return sess.write(cmd, summary)
		})
	}

	cmd.Flags().IntVar(&flags.bins, "bins", config.DefaultHistogramBinCount, "number of bins (default from config)")
	cmd.Flags().Float64Var(&flags.minBound, "min", 0, "fixed lower bound (default: data min or config)")
	cmd.Flags().Float64Var(&flags.maxBound, "max", 0, "fixed upper bound (default: data max or config)")
	cmd.Flags().Float64SliceVar(&flags.fractions, "fractions", config.DefaultHistogramFractions(), "cumulative fractions in [0, 1] to estimate")
	cmd.Flags().StringVar(&flags.style, "style", "", "regular or switched (default from config)")
	cmd.Flags().StringVar(&flags.htmlPath, "html", "", "also write an HTML bar chart of the bins to this path")

	return cmd
}

func (f *histogramFlags) resolve(cmd *cobra.Command, cfg *config.Config) (aggregate.HistogramOptions, error) {
	resolved := aggregate.HistogramOptions{
		BinCount:  cfg.Histogram.BinCount,
		Fractions: f.fractions,
	}

	if cfg.Histogram.Bounds == config.BoundsFixed {
		minBound, maxBound := cfg.Histogram.Min, cfg.Histogram.Max
		resolved.Min, resolved.Max = &minBound, &maxBound
	}

	if cmd.Flags().Changed("bins") {
		resolved.BinCount = f.bins
	}

	if cmd.Flags().Changed("min") {
		resolved.Min = &f.minBound
	}

	if cmd.Flags().Changed("max") {
		resolved.Max = &f.maxBound
	}

	style, err := resolveStyle(cmd, f.style, cfg)
	if err != nil {
		return resolved, err
	}

	resolved.Style = style

	return resolved, nil
}

func writeChart(path string, hist *ensemble.Histogram, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}

	err = report.WriteHistogramChart(f, hist, title)

	return errors.Join(err, f.Close())
}

func chartTitle(name string) string {
	if name == "" {
		return "Ensemble histogram"
	}

	return name + " histogram"
}

// NewCurvesCommand creates the curves command.
func NewCurvesCommand(opts *GlobalOptions) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "curves " + inputArgUsage,
		Short: "Per-time-step P10/P50/P90 and mean across realizations",
		Long: `Treat every series as one realization and summarize the ensemble
column by column. All series must have the same length.`,
		Args: cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, opts, "curves", func(ctx context.Context, sess *session) error {
			resolved, err := resolveStyle(cmd, style, sess.cfg)
			if err != nil {
				return err
			}

			doc, err := sess.load(ctx, cmd, args[0])
			if err != nil {
				return err
			}

			summary, err := sess.agg.Curves(ctx, doc.Name, doc.Realizations(), resolved)
			if err != nil {
				return err
			}

			return sess.write(cmd, summary)
		})
	}

	cmd.Flags().StringVar(&style, "style", "", "regular or switched (default from config)")

	return cmd
}

func resolveStyle(cmd *cobra.Command, name string, cfg *config.Config) (ensemble.PercentileStyle, error) {
	if !cmd.Flags().Changed("style") {
		return cfg.PercentileStyle(), nil
	}

	style, ok := ensemble.ParsePercentileStyle(name)
	if !ok {
		return ensemble.Regular, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}

	return style, nil
}
