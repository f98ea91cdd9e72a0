// =============================================================================
// Resolved Trades Consolidator - Shared Types
// =============================================================================
//
// This package contains the table model shared by the loaders, the sheet
// writer, the merger and the summary pipeline:
//   - Value      : a single typed cell (null, text or number)
//   - Table      : an ordered set of columns and rows loaded from one file
//   - Column     : a schema-on-read view over one named column
//   - SourceFile : a discovered "*_Resolved" file and its filename tokens
//
// Column absence is a normal condition. Lookups return (Column, bool) so the
// caller decides what "missing" means instead of handling an error.
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// Kind identifies what a Value holds.
type Kind int

const (
	// KindNull is an empty or NA cell.
	KindNull Kind = iota
	// KindText is any non-numeric content, timestamps included.
	KindText
	// KindNumber is a numeric cell held as a decimal.
	KindNumber
)

// nullTokens are the cell contents treated as missing on read.
// They mirror the NA markers produced by the upstream dataframe tooling.
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"#NA":  true,
	"<NA>": true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"NaT":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// maxExactInteger is the largest integer a spreadsheet number cell stores
// without losing digits (2^53).
var maxExactInteger = decimal.NewFromInt(1 << 53)

// Value is a single table cell.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
}

// Null returns the missing value.
func Null() Value {
	return Value{kind: KindNull}
}

// Text returns a text value. Empty text is null.
func Text(s string) Value {
	if s == "" {
		return Null()
	}
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d, text: d.String()}
}

// ParseValue converts raw cell text into a Value.
//
// Surrounding whitespace is trimmed, NA markers become null, anything that
// parses as a decimal becomes a number (keeping its original spelling for
// display) and everything else is text.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if nullTokens[s] {
		return Null()
	}
	if looksNumeric(s) {
		if d, err := decimal.NewFromString(s); err == nil {
			return Value{kind: KindNumber, num: d, text: s}
		}
	}
	return Value{kind: KindText, text: s}
}

// looksNumeric rejects strings decimal would accept but a reader would not
// call a number, such as a bare "." or values with embedded spaces.
func looksNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return digits > 0
}

// Kind reports what the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Decimal returns the numeric value, or zero for non-numeric values.
func (v Value) Decimal() decimal.Decimal { return v.num }

// String renders the value the way it appears in a cell. Null renders empty.
func (v Value) String() string {
	if v.kind == KindNull {
		return ""
	}
	return v.text
}

// CellValue returns the value in the form the workbook writer expects:
// nil for null, float64 for numbers that a number cell can hold exactly,
// and string otherwise. Integers beyond 2^53 (nanosecond epochs, order IDs)
// are kept as text so no digits are lost.
func (v Value) CellValue() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindNumber:
		if v.num.IsInteger() && v.num.Abs().GreaterThan(maxExactInteger) {
			return v.text
		}
		return v.num.InexactFloat64()
	default:
		return v.text
	}
}

// Equal reports whether two values hold the same content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num.Equal(other.num)
	}
	return v.text == other.text
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered sequence of rows loaded from one source file.
// Rows are positional; Columns gives the header for each position.
type Table struct {
	// Columns holds the header names in file order.
	Columns []string

	// Rows holds the data rows. Every row has len(Columns) values.
	Rows [][]Value

	// SourceFile is the path the table was loaded from, if any.
	SourceFile string

	index map[string]int
}

// NewTable builds a table from headers and raw string rows.
// Short rows are padded with nulls and long rows are cut to the header width.
func NewTable(columns []string, raw [][]string) *Table {
	t := &Table{Columns: columns}
	for _, r := range raw {
		row := make([]Value, len(columns))
		for i := range columns {
			if i < len(r) {
				row[i] = ParseValue(r[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Column returns the named column, or false when the table has no such column.
// When a header repeats, the first occurrence wins.
func (t *Table) Column(name string) (Column, bool) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i := len(t.Columns) - 1; i >= 0; i-- {
			t.index[t.Columns[i]] = i
		}
	}
	pos, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return Column{table: t, pos: pos, Name: name}, true
}

// Value returns the cell at row in the named column. A missing column or an
// out-of-range row yields null.
func (t *Table) Value(row int, name string) Value {
	col, ok := t.Column(name)
	if !ok {
		return Null()
	}
	return col.At(row)
}

// Column is a view over one named column of a Table.
type Column struct {
	Name  string
	table *Table
	pos   int
}

// At returns the value at row, or null when row is out of range.
func (c Column) At(row int) Value {
	if row < 0 || row >= len(c.table.Rows) {
		return Null()
	}
	return c.table.Rows[row][c.pos]
}

// FirstValid returns the index of the first non-null row.
func (c Column) FirstValid() (int, bool) {
	for i, row := range c.table.Rows {
		if !row[c.pos].IsNull() {
			return i, true
		}
	}
	return -1, false
}

// FirstValue returns the first non-null value in the column.
func (c Column) FirstValue() (Value, bool) {
	i, ok := c.FirstValid()
	if !ok {
		return Null(), false
	}
	return c.At(i), true
}

// =============================================================================
// SOURCE FILES
// =============================================================================

// SourceFile is a discovered resolved-trade file. It is immutable once built.
type SourceFile struct {
	// Path is the absolute path of the file.
	Path string

	// Name is the file name including extension.
	Name string

	// Stem is the file name without its extension.
	Stem string

	// Ext is the lower-case extension without the dot ("csv", "xlsx", ...).
	Ext string

	// Direction, Date and Time are the first three "_"-separated tokens of
	// the stem once the "_Resolved" marker is removed.
	Direction string
	Date      string
	Time      string

	// Conventional is false when the stem has fewer than three tokens; the
	// token fields are then empty.
	Conventional bool
}
