// =============================================================================
// Resolved Trades Consolidator - Merge Command
// =============================================================================
//
// This file defines the 'merge' command, which collects every resolved-trade
// file under the source directory into one workbook.
//
// COMMAND USAGE:
//   trades merge [--source DIR] [--staging DIR] [--merged FILE]
//
// OUTPUT:
//   Found and copied 3 files.
//   Added sheet: Buy_0115_0930
//   ...
//   Completion banner with the workbook path and sheet count
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/resolved-trades/internal/config"
	"github.com/ginjaninja78/resolved-trades/internal/csvparser"
	"github.com/ginjaninja78/resolved-trades/internal/merger"
	"github.com/ginjaninja78/resolved-trades/pkg/utils"
)

const banner = "======================================="

// mergeCmd represents the 'merge' command.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge every *_Resolved file into one workbook",
	Long: `The merge command walks the source directory for files whose name ends with
"_Resolved" (before the first dot), copies them into the staging directory,
and writes each one as a sheet of the merged workbook.

Sheet names follow {direction}_{MMDD}_{HHMM} from the file name, are at most
31 characters, and get a numeric suffix when they repeat.

Files that cannot be read are reported and skipped; the merge continues.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		report, err := runMerge(cmd.OutOrStdout(), cfg, logger)
		if err != nil {
			return err
		}
		return writeRunLog(cmd.OutOrStdout(), cfg, report.RunSummary())
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

// runMerge runs the merger and prints its progress to out.
func runMerge(out io.Writer, cfg *config.MainConfig, logger *slog.Logger) (*merger.Report, error) {
	m := merger.New(merger.Options{
		SourceRoot: cfg.SourceRoot,
		StagingDir: cfg.StagingDir,
		Output:     cfg.MergedOutput,
		CSV:        csvparser.Settings{Delimiter: cfg.CSV.DelimiterRune()},
	}, logger).WithProgress(consoleProgress{out: out})

	report, err := m.Run()
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, " Completed! Each file added with clean sheet names.")
	fmt.Fprintln(out, " Saved as:", report.Output)
	fmt.Fprintln(out, " Total sheets:", report.SheetsWritten())
	fmt.Fprintln(out, banner)

	return report, nil
}

// consoleProgress prints merge events to the console as they happen.
type consoleProgress struct {
	out io.Writer
}

func (p consoleProgress) Staged(copied int) {
	fmt.Fprintf(p.out, "Found and copied %d files.\n", copied)
}

func (p consoleProgress) Merged(res merger.Result) {
	switch res.Status {
	case merger.StatusAdded:
		fmt.Fprintf(p.out, "Added sheet: %s\n", res.Sheet)
	case merger.StatusUnsupported:
		fmt.Fprintf(p.out, "Skipping unsupported file: %s\n", res.Source.Path)
	default:
		fmt.Fprintf(p.out, "Error reading %s: %v\n", res.Source.Path, res.Err)
	}
}

// writeRunLog writes the run log when a run log directory is configured.
func writeRunLog(out io.Writer, cfg *config.MainConfig, s utils.RunSummary) error {
	if cfg.RunLogDir == "" {
		return nil
	}
	if err := utils.EnsureDirectories(cfg.RunLogDir); err != nil {
		return err
	}

	s.SourceRoot = cfg.SourceRoot
	path, err := utils.WriteRunLog(s, cfg.RunLogDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Run log written to", path)
	return nil
}
