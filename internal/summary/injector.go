// =============================================================================
// Resolved Trades Consolidator - Summary Injector
// =============================================================================
//
// This module writes the 12-row summary block above a trade sheet's data.
//
// BLOCK LAYOUT:
//   Row 1     : "SUMMARY TABLE", merged across A1:C1
//   Row 2     : blank
//   Rows 3-9  : one key (column A) and value (column B) per summary field
//   Rows 10-12: blank; the original header row follows on row 13
//
// =============================================================================

package summary

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/xlsxwriter"
)

// Summary block layout.
const (
	// BlockRows is the number of rows inserted above the original data.
	BlockRows = 12

	// Title is written into the merged first row of the block.
	Title = "SUMMARY TABLE"

	// firstFieldRow is the row of the first key/value pair.
	firstFieldRow = 3
)

// Inject inserts a styled summary block for rec above the data on sheet.
//
// The original data moves down by BlockRows rows. Row 1 holds the title
// merged across columns A to C; from row 3 each field except Sheet is written
// as a key (column A) and value (column B). A null value leaves its cell
// empty but still bordered.
//
// styles must have been registered in f. When nil, they are registered now.
func Inject(f *excelize.File, sheet string, rec Record, styles *xlsxwriter.Styles) error {
	if styles == nil {
		s, err := xlsxwriter.NewStyles(f)
		if err != nil {
			return err
		}
		styles = s
	}

	if err := f.InsertRows(sheet, 1, BlockRows); err != nil {
		return fmt.Errorf("failed to insert summary rows on %s: %w", sheet, err)
	}

	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return fmt.Errorf("failed to merge title cells on %s: %w", sheet, err)
	}
	if err := f.SetCellValue(sheet, "A1", Title); err != nil {
		return fmt.Errorf("failed to write title on %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", styles.Title); err != nil {
		return fmt.Errorf("failed to style title on %s: %w", sheet, err)
	}

	row := firstFieldRow
	for _, field := range rec.Fields() {
		if field.Key == KeySheet {
			continue
		}

		key, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		value, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(sheet, key, field.Key); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, key, err)
		}
		if err := xlsxwriter.SetValue(f, sheet, value, field.Value); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, value, err)
		}
		if err := f.SetCellStyle(sheet, key, key, styles.Key); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, value, value, styles.Bordered); err != nil {
			return err
		}
		row++
	}

	return nil
}
