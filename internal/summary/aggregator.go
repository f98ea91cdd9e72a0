// =============================================================================
// Resolved Trades Consolidator - Aggregator
// =============================================================================
//
// This module builds the "AGGREGATED SUMMARY" sheet: one header row and one
// row per summarized sheet, placed first in the workbook and made active.
//
// =============================================================================

package summary

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/types"
	"github.com/ginjaninja78/resolved-trades/internal/xlsxwriter"
)

// AggregateSheet is the name of the report sheet.
const AggregateSheet = "AGGREGATED SUMMARY"

// columnPadding is added to the widest rendered cell of each report column.
const columnPadding = 2

// Aggregate writes records to a new AggregateSheet placed first in f.
//
// The header row holds Keys() and is written even when records is empty.
// Each record is one row, in the order given. Column widths fit the longest
// rendered cell, header included, capped at the widest column a workbook
// allows. An existing AggregateSheet is replaced.
//
// styles must have been registered in f. When nil, they are registered now.
func Aggregate(f *excelize.File, records []Record, styles *xlsxwriter.Styles) error {
	if styles == nil {
		s, err := xlsxwriter.NewStyles(f)
		if err != nil {
			return err
		}
		styles = s
	}

	if idx, _ := f.GetSheetIndex(AggregateSheet); idx >= 0 {
		if err := f.DeleteSheet(AggregateSheet); err != nil {
			return fmt.Errorf("failed to replace %s: %w", AggregateSheet, err)
		}
	}
	if _, err := f.NewSheet(AggregateSheet); err != nil {
		return fmt.Errorf("failed to create %s: %w", AggregateSheet, err)
	}

	keys := Keys()
	widths := make([]int, len(keys))

	header := make([]interface{}, len(keys))
	for i, k := range keys {
		header[i] = k
		widths[i] = utf8.RuneCountInString(k)
	}
	if err := f.SetSheetRow(AggregateSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	if err := xlsxwriter.StyleRange(f, AggregateSheet, 1, 1, len(keys), 1, styles.ReportHeader); err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		values := rec.Values()
		if err := xlsxwriter.WriteRow(f, AggregateSheet, row, values); err != nil {
			return err
		}
		if err := xlsxwriter.StyleRange(f, AggregateSheet, 1, row, len(keys), row, styles.Bordered); err != nil {
			return err
		}
		for j, v := range values {
			widths[j] = max(widths[j], renderedWidth(v))
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := min(float64(w+columnPadding), float64(excelize.MaxColumnWidth))
		if err := f.SetColWidth(AggregateSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := moveFirst(f, AggregateSheet); err != nil {
		return err
	}
	return nil
}

// moveFirst places sheet at position 0 and makes it the active sheet.
func moveFirst(f *excelize.File, sheet string) error {
	first := f.GetSheetName(0)
	if first != sheet {
		if err := f.MoveSheet(sheet, first); err != nil {
			return fmt.Errorf("failed to move %s to the front: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)
	return nil
}

func renderedWidth(v types.Value) int {
	return utf8.RuneCountInString(v.String())
}
