// =============================================================================
// Resolved Trades Consolidator - Summarizer
// =============================================================================
//
// This module runs the summary stage over a merged workbook.
//
// PIPELINE:
//   1. For each data sheet, in workbook order:
//        a. read the sheet back into a Table (raw cell values)
//        b. Extract a Record
//        c. Inject the summary block above the data
//   2. Aggregate every Record into the "AGGREGATED SUMMARY" sheet
//
//   Aggregation runs only after every sheet is done, since it needs every
//   record. The workbook is passed in and handed back; the caller saves it.
//
// SKIPPED SHEETS:
//   - a sheet named "Summary" (a report left by an earlier tool)
//   - an existing "AGGREGATED SUMMARY" sheet
//   - sheets with no data rows
//
// =============================================================================

package summary

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/xlsxparser"
	"github.com/ginjaninja78/resolved-trades/internal/xlsxwriter"
)

// LegacySummarySheet is a sheet name the summarizer never treats as data.
const LegacySummarySheet = "Summary"

// SheetStatus is the outcome for one sheet.
type SheetStatus string

const (
	StatusSummarized SheetStatus = "summarized"
	StatusSkipped    SheetStatus = "skipped"
)

// SheetResult is the outcome of summarizing one sheet.
type SheetResult struct {
	Sheet  string
	Status SheetStatus
	Reason string
}

// Report describes one summary run.
type Report struct {
	// Records holds one summary per summarized sheet, in workbook order.
	Records []Record

	// Sheets holds one result per sheet examined, in workbook order.
	Sheets []SheetResult
}

// Summarized returns the number of sheets that received a summary block.
func (r *Report) Summarized() int {
	return len(r.Records)
}

// Summarize adds a summary block to every data sheet of f and then the
// aggregate sheet. It returns f so ownership stays explicit.
func Summarize(f *excelize.File, logger *slog.Logger) (*excelize.File, *Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	styles, err := xlsxwriter.NewStyles(f)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{}

	// The list is taken before the aggregate sheet is added.
	for _, sheet := range f.GetSheetList() {
		if sheet == LegacySummarySheet || sheet == AggregateSheet {
			logger.Debug("skipping report sheet", "sheet", sheet)
			report.Sheets = append(report.Sheets, SheetResult{Sheet: sheet, Status: StatusSkipped, Reason: "report sheet"})
			continue
		}

		table, err := xlsxparser.ReadSheet(f, sheet)
		if err != nil {
			return nil, nil, err
		}
		if table.Empty() {
			logger.Warn("skipping sheet without data rows", "sheet", sheet)
			report.Sheets = append(report.Sheets, SheetResult{Sheet: sheet, Status: StatusSkipped, Reason: "no data rows"})
			continue
		}

		rec := Extract(table, sheet)
		if err := Inject(f, sheet, rec, styles); err != nil {
			return nil, nil, err
		}

		logger.Debug("summarized sheet",
			"sheet", sheet,
			"side", rec.Side,
			"resolution", rec.Resolution,
			"rows", table.Len())
		report.Records = append(report.Records, rec)
		report.Sheets = append(report.Sheets, SheetResult{Sheet: sheet, Status: StatusSummarized})
	}

	if err := Aggregate(f, report.Records, styles); err != nil {
		return nil, nil, err
	}

	logger.Info("summary complete", "sheets", report.Summarized())
	return f, report, nil
}

// SummarizeFile summarizes the workbook at inPath and saves it to outPath.
func SummarizeFile(inPath, outPath string, logger *slog.Logger) (*Report, error) {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open merged workbook %s: %w", inPath, err)
	}
	defer f.Close()

	f, report, err := Summarize(f, logger)
	if err != nil {
		return nil, err
	}

	if err := f.SaveAs(outPath); err != nil {
		return nil, fmt.Errorf("failed to save summary workbook %s: %w", outPath, err)
	}
	return report, nil
}
