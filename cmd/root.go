// =============================================================================
// Resolved Trades Consolidator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every pipeline
// command hangs off it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (trades)
//   ├── mergeCmd     (trades merge)
//   ├── summarizeCmd (trades summarize)
//   ├── runCmd       (trades run)
//   └── versionCmd   (trades version)
//
// CONFIGURATION:
//   The root command owns the flags shared by every pipeline command:
//   1. --config and --verbose
//   2. path overrides (--source, --staging, --merged, --summary, --run-log-dir)
//
//   Flags win over config.yaml, .env and RESOLVED_* environment variables.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/resolved-trades/internal/config"
	"github.com/ginjaninja78/resolved-trades/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// Path overrides. Empty means "use the configuration".
var (
	sourceRoot    string
	stagingDir    string
	mergedOutput  string
	summaryOutput string
	runLogDir     string
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trades",
	Short: "Resolved Trades Consolidator - merge and summarize resolved-trade files",
	Long: `Resolved Trades Consolidator collects every "*_Resolved" trade file under a
source directory into one workbook, one sheet per file, and then writes a
second workbook where every sheet carries a summary block and a leading
"AGGREGATED SUMMARY" sheet lists one row per trade.

Supported source formats: .csv, .xlsx, .xls

Example Usage:
  trades run                              # Merge, then summarize
  trades merge --source ./trades          # Merge only
  trades summarize --merged ./merged.xlsx # Summarize an existing merge
  trades run --config ./my.yaml -v        # Custom config, debug logging`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file (optional)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(&sourceRoot, "source", "", "Source directory searched for *_Resolved files")
	rootCmd.PersistentFlags().StringVar(&stagingDir, "staging", "", "Directory receiving a flat copy of every source file")
	rootCmd.PersistentFlags().StringVar(&mergedOutput, "merged", "", "Merged workbook path")
	rootCmd.PersistentFlags().StringVar(&summaryOutput, "summary", "", "Summarized workbook path")
	rootCmd.PersistentFlags().StringVar(&runLogDir, "run-log-dir", "", "Directory for the text run log")
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the configuration, applies flag overrides and builds the
// logger.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, *slog.Logger, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyFlagOverrides(cfg)
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return cfg, logger, nil
}

// applyFlagOverrides copies every non-empty path flag into cfg.
func applyFlagOverrides(cfg *config.MainConfig) {
	overrides := []struct {
		flag   string
		target *string
	}{
		{sourceRoot, &cfg.SourceRoot},
		{stagingDir, &cfg.StagingDir},
		{mergedOutput, &cfg.MergedOutput},
		{summaryOutput, &cfg.SummaryOutput},
		{runLogDir, &cfg.RunLogDir},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.target = o.flag
		}
	}
}
