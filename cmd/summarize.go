// =============================================================================
// Resolved Trades Consolidator - Summarize Command
// =============================================================================
//
// This file defines the 'summarize' command, which adds a summary block to
// every sheet of the merged workbook and a leading "AGGREGATED SUMMARY" sheet.
//
// COMMAND USAGE:
//   trades summarize [--merged FILE] [--summary FILE]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/resolved-trades/internal/config"
	"github.com/ginjaninja78/resolved-trades/internal/summary"
	"github.com/ginjaninja78/resolved-trades/pkg/utils"
)

// summarizeCmd represents the 'summarize' command.
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Add summary blocks and the aggregate sheet to a merged workbook",
	Long: `The summarize command reads the merged workbook and, for every data sheet,
inserts a 12-row "SUMMARY TABLE" block above the data holding the trade side,
entry and resolution timestamps, open and resolution prices, fill type and P/L.

All summaries are then collected into an "AGGREGATED SUMMARY" sheet placed
first in the workbook. The result is saved to the summary output path; the
merged workbook is left unchanged.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		_, err = runSummarize(cmd.OutOrStdout(), cfg, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

// runSummarize summarizes the merged workbook and prints the outcome to out.
func runSummarize(out io.Writer, cfg *config.MainConfig, logger *slog.Logger) (*summary.Report, error) {
	if err := utils.EnsureParentDir(cfg.SummaryOutput); err != nil {
		return nil, err
	}

	report, err := summary.SummarizeFile(cfg.MergedOutput, cfg.SummaryOutput, logger)
	if err != nil {
		return nil, err
	}

	for _, s := range report.Sheets {
		if s.Status == summary.StatusSkipped {
			fmt.Fprintf(out, "Skipped sheet %s: %s\n", s.Sheet, s.Reason)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ %d sheet summaries added successfully.\n", report.Summarized())
	fmt.Fprintln(out, "✓ Aggregated summary sheet created at the TOP.")
	fmt.Fprintln(out, "Saved to:", cfg.SummaryOutput)

	return report, nil
}
