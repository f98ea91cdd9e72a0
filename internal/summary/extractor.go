// =============================================================================
// Resolved Trades Consolidator - Summary Extractor
// =============================================================================
//
// This module reduces one trade table to a fixed-shape summary Record.
//
// RESOLUTION PRIORITY:
//   1. "Profit Filled" has a value  -> first such row, flag "Profit Filled"
//   2. "Stop Filled" has a value    -> first such row, flag "Stop Filled"
//   3. neither                      -> TS Resolved is "Not Resolved"
//
//   A profit fill wins even when the first stop fill comes earlier in the
//   table. Row order is not compared across the two columns.
//
// MISSING COLUMNS:
//   Every column is optional. A missing column yields a null field, never an
//   error.
//
// =============================================================================

package summary

import (
	"strings"

	"github.com/ginjaninja78/resolved-trades/internal/types"
)

// Column names read from each trade table.
const (
	ColTimestamp     = "ts_event"
	ColProfitFilled  = "Profit Filled"
	ColStopFilled    = "Stop Filled"
	ColBuyOpenPrice  = "Buy Open Price"
	ColSellOpenPrice = "Sell Open Price"
	ColPL            = "P/L"
)

// NotResolved is the TS Resolved value of a trade with no fill.
const NotResolved = "Not Resolved"

// Side is the trade direction shown in the summary.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Resolution is the fill event that closed the trade.
type Resolution string

const (
	ResolutionProfit Resolution = "Profit Filled"
	ResolutionStop   Resolution = "Stop Filled"
	ResolutionNone   Resolution = ""
)

// Record is the summary of one sheet. Records are built by Extract and are
// not modified afterwards.
type Record struct {
	Sheet           string
	Side            Side
	TSEntry         types.Value
	TSResolved      types.Value
	OpenPrice       types.Value
	ResolutionPrice types.Value
	Resolution      Resolution
	PL              types.Value
}

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value types.Value
}

// Field keys in display order.
const (
	KeySheet           = "Sheet"
	KeySide            = "Buy/Sell"
	KeyTSEntry         = "TS Entry"
	KeyTSResolved      = "TS Resolved"
	KeyOpenPrice       = "Open Price"
	KeyResolutionPrice = "Resolution Price"
	KeyResolution      = "Stop/Profit Filled"
	KeyPL              = "P/L"
)

// Keys returns the Record field keys in display order.
func Keys() []string {
	return []string{
		KeySheet, KeySide, KeyTSEntry, KeyTSResolved,
		KeyOpenPrice, KeyResolutionPrice, KeyResolution, KeyPL,
	}
}

// Fields returns the record as key/value pairs in display order.
func (r Record) Fields() []Field {
	resolution := types.Null()
	if r.Resolution != ResolutionNone {
		resolution = types.Text(string(r.Resolution))
	}
	return []Field{
		{KeySheet, types.Text(r.Sheet)},
		{KeySide, types.Text(string(r.Side))},
		{KeyTSEntry, r.TSEntry},
		{KeyTSResolved, r.TSResolved},
		{KeyOpenPrice, r.OpenPrice},
		{KeyResolutionPrice, r.ResolutionPrice},
		{KeyResolution, resolution},
		{KeyPL, r.PL},
	}
}

// Values returns the field values in display order.
func (r Record) Values() []types.Value {
	fields := r.Fields()
	out := make([]types.Value, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract summarizes table, which was loaded for the sheet called sheet.
// It has no side effects and never fails.
func Extract(table *types.Table, sheet string) Record {
	rec := Record{
		Sheet:           sheet,
		Side:            sideOf(sheet),
		TSEntry:         table.Value(0, ColTimestamp),
		TSResolved:      types.Text(NotResolved),
		OpenPrice:       firstValue(table, ColBuyOpenPrice, ColSellOpenPrice),
		ResolutionPrice: types.Null(),
		Resolution:      ResolutionNone,
		PL:              firstValue(table, ColPL),
	}

	for _, candidate := range []struct {
		column string
		flag   Resolution
	}{
		{ColProfitFilled, ResolutionProfit},
		{ColStopFilled, ResolutionStop},
	} {
		col, ok := table.Column(candidate.column)
		if !ok {
			continue
		}
		row, ok := col.FirstValid()
		if !ok {
			continue
		}
		rec.TSResolved = table.Value(row, ColTimestamp)
		rec.ResolutionPrice = col.At(row)
		rec.Resolution = candidate.flag
		break
	}

	return rec
}

// sideOf classifies a sheet by name only. It does not look at the direction
// token of the source file name.
func sideOf(sheet string) Side {
	if strings.Contains(sheet, string(SideBuy)) {
		return SideBuy
	}
	return SideSell
}

// firstValue returns the first non-null value of the first listed column that
// has one.
func firstValue(table *types.Table, columns ...string) types.Value {
	for _, name := range columns {
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		if v, ok := col.FirstValue(); ok {
			return v
		}
	}
	return types.Null()
}
