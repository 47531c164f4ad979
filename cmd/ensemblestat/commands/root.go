// Package commands implements CLI command handlers for ensemblestat.
package commands

import (
	"github.com/spf13/cobra"
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Format     string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand creates the ensemblestat root command with all analysis
// commands attached.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ensemblestat",
		Short: "Ensemble statistics for reservoir simulation results",
		Long: `ensemblestat summarizes ensembles of simulation result vectors.

Commands:
  stats        Basic statistics of the pooled samples
  percentiles  Exact percentiles (nearest rank or interpolated)
  histogram    Fixed-width histogram and histogram percentile estimates
  curves       Per-time-step P10/P50/P90 and mean across realizations
  mcp          Serve the engine as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: .ensemblestat.yaml in CWD or $HOME)")
	flags.StringVar(&opts.Format, "format", "", "output format: table, json, yaml, msgpack (default from config)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress log output")

	rootCmd.AddCommand(
		NewStatsCommand(opts),
		NewPercentilesCommand(opts),
		NewHistogramCommand(opts),
		NewCurvesCommand(opts),
		NewMCPCommand(opts),
	)

	return rootCmd
}
