// =============================================================================
// Resolved Trades Consolidator - Run Command
// =============================================================================
//
// This file defines the 'run' command, the full pipeline:
//   1. merge     : source tree -> merged workbook
//   2. summarize : merged workbook -> summarized workbook
//
// The summary stage starts only after the merged workbook is saved.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Merge every *_Resolved file, then summarize the result",
	Long: `The run command performs 'merge' followed by 'summarize' with the same
configuration. See the help of each command for details.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		out := cmd.OutOrStdout()

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "=== Resolved Trades Consolidator ===")

		mergeReport, err := runMerge(out, cfg, logger)
		if err != nil {
			return err
		}

		summaryReport, err := runSummarize(out, cfg, logger)
		if err != nil {
			return err
		}

		s := mergeReport.RunSummary()
		s.SummaryOutput = cfg.SummaryOutput
		s.Summarized = summaryReport.Summarized()
		s.EndTime = time.Now()
		if err := writeRunLog(out, cfg, s); err != nil {
			return err
		}

		fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
