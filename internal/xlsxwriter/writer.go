// =============================================================================
// Resolved Trades Consolidator - Workbook Writer
// =============================================================================
//
// This module writes Tables into a workbook, one sheet per table.
//
// SHEET LAYOUT:
//   Row 1     : column headers (bold, thin border, centered)
//   Row 2..N  : data rows, one per table row, in table order
//
//   Null cells are left empty. Numbers are written as number cells, except
//   integers too large for a number cell, which are written as text.
//
// A new workbook starts with one empty default sheet. The first table
// replaces it, so a workbook with at least one table has no stray sheet.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/types"
)

// =============================================================================
// WRITER
// =============================================================================

// Writer accumulates table sheets in a single workbook.
type Writer struct {
	file   *excelize.File
	styles *Styles
	sheets []string
}

// NewWriter creates a writer backed by a new, empty workbook.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	styles, err := NewStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{file: f, styles: styles}, nil
}

// AddTable writes table to a new sheet called name.
// The caller is responsible for name being valid and unique.
func (w *Writer) AddTable(name string, table *types.Table) error {
	if len(w.sheets) == 0 {
		// Reuse the workbook's default sheet for the first table.
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	if err := WriteTable(w.file, name, table, w.styles); err != nil {
		return err
	}

	w.sheets = append(w.sheets, name)
	return nil
}

// Sheets returns the names of the sheets written so far, in order.
func (w *Writer) Sheets() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// File returns the underlying workbook. Ownership passes to the caller.
func (w *Writer) File() *excelize.File {
	return w.file
}

// SaveAs writes the workbook to path.
func (w *Writer) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook.
func (w *Writer) Close() error {
	return w.file.Close()
}

// =============================================================================
// TABLE OUTPUT
// =============================================================================

// WriteTable writes table's header and rows into an existing sheet,
// starting at A1.
func WriteTable(f *excelize.File, sheet string, table *types.Table, styles *Styles) error {
	if len(table.Columns) == 0 {
		return nil
	}

	header := make([]interface{}, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header for sheet %s: %w", sheet, err)
	}
	if styles != nil {
		if err := StyleRange(f, sheet, 1, 1, len(table.Columns), 1, styles.TableHeader); err != nil {
			return fmt.Errorf("failed to style header for sheet %s: %w", sheet, err)
		}
	}

	for i, row := range table.Rows {
		if err := WriteRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

// WriteRow writes values into row (1-based) starting at column A.
// Null values leave their cell untouched.
func WriteRow(f *excelize.File, sheet string, row int, values []types.Value) error {
	for j, v := range values {
		if v.IsNull() {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, row)
		if err != nil {
			return err
		}
		if err := SetValue(f, sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// SetValue writes a single Value into cell.
func SetValue(f *excelize.File, sheet, cell string, v types.Value) error {
	switch cv := v.CellValue().(type) {
	case nil:
		return nil
	case float64:
		return f.SetCellFloat(sheet, cell, cv, -1, 64)
	default:
		return f.SetCellValue(sheet, cell, cv)
	}
}
