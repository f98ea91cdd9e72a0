// =============================================================================
// Resolved Trades Consolidator - Spreadsheet Loader
// =============================================================================
//
// This module loads spreadsheet resolved-trade files into a Table:
//   - .xlsx : Office Open XML workbooks, read with excelize
//   - .xls  : legacy BIFF8 workbooks, read with extrame/xls
//
// Only the first worksheet is read. Its first row is the header row and every
// following row is a data row, matching the CSV loader.
//
// The summary pipeline also uses ReadSheet to turn an already-open merged
// workbook's sheet back into a Table.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/csvparser"
	"github.com/ginjaninja78/resolved-trades/internal/types"
)

// ErrNoSheets is returned when a workbook contains no worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrEmptySheet is returned when the first worksheet has no header row.
var ErrEmptySheet = errors.New("worksheet has no header row")

// xlsCharset is the fallback charset for legacy workbooks.
const xlsCharset = "utf-8"

// =============================================================================
// XLSX
// =============================================================================

// Parse reads the first worksheet of the .xlsx file at filePath.
// Cell values are read as displayed, so dates keep their formatting.
func Parse(filePath string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	table, err := FromRows(rows)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ReadSheet reads a sheet of an open workbook into a Table. The merged
// workbook is read with raw cell values so numbers come back exactly as they
// were written.
func ReadSheet(f *excelize.File, sheetName string) (*types.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return &types.Table{}, nil
	}
	return FromRows(rows)
}

// FromRows builds a Table from spreadsheet rows, header first.
func FromRows(rows [][]string) (*types.Table, error) {
	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return nil, ErrEmptySheet
	}

	headers := csvparser.CleanHeaders(trimTrailingEmpty(rows[0]))
	return types.NewTable(headers, rows[1:]), nil
}

// =============================================================================
// XLS
// =============================================================================

// ParseXLS reads the first worksheet of the legacy .xls file at filePath.
//
// The BIFF reader panics on some malformed files; that is reported as an
// error so one bad file cannot stop a batch.
func ParseXLS(filePath string) (table *types.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("failed to read xls workbook: %v", r)
		}
	}()

	wb, err := xls.Open(filePath, xlsCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheets
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	table, err = FromRows(trimTrailingRows(rows))
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sheetRow returns row i of sheet, or nil when the sheet has no record for it.
// xls.WorkSheet.Row dereferences the missing row instead of returning nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// trimTrailingEmpty drops empty cells after the last non-empty header.
func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

// trimTrailingRows drops empty rows after the last row with content.
func trimTrailingRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isRowEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}
