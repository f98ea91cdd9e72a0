package summary

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/types"
	"github.com/ginjaninja78/resolved-trades/internal/xlsxwriter"
)

func buyTable() *types.Table {
	return types.NewTable(
		[]string{"ts_event", "Buy Open Price", "Profit Filled", "P/L"},
		[][]string{
			{"2024-01-15 09:30:00", "4801.5", "", "12.5"},
			{"2024-01-15 09:31:00", "", "", ""},
			{"2024-01-15 09:32:00", "", "", ""},
			{"2024-01-15 09:33:00", "", "4810.25", ""},
		},
	)
}

func sellTable() *types.Table {
	return types.NewTable(
		[]string{"ts_event", "Sell Open Price", "P/L"},
		[][]string{
			{"2024-01-16 10:45:00", "4780.25", "-3"},
			{"2024-01-16 10:46:00", "", ""},
		},
	)
}

// mergedWorkbook builds a workbook shaped like the merger's output.
func mergedWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	w, err := xlsxwriter.NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddTable("Buy_0115_0930", buyTable()))
	require.NoError(t, w.AddTable("Sell_0116_1045", sellTable()))

	f := w.File()
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

// =============================================================================
// INJECTOR
// =============================================================================

func TestInject(t *testing.T) {
	f := mergedWorkbook(t)
	styles, err := xlsxwriter.NewStyles(f)
	require.NoError(t, err)

	const sheet = "Sell_0116_1045"
	table := sellTable()
	rec := Extract(table, sheet)
	require.NoError(t, Inject(f, sheet, rec, styles))

	assert.Equal(t, Title, cell(t, f, sheet, "A1"))
	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "C1", merged[0].GetEndAxis())

	assert.Equal(t, "Buy/Sell", cell(t, f, sheet, "A3"))
	assert.Equal(t, "Sell", cell(t, f, sheet, "B3"))
	assert.Equal(t, "TS Resolved", cell(t, f, sheet, "A5"))
	assert.Equal(t, NotResolved, cell(t, f, sheet, "B5"))
	assert.Equal(t, "Resolution Price", cell(t, f, sheet, "A7"))
	assert.Equal(t, "", cell(t, f, sheet, "B7"))
	assert.Equal(t, "P/L", cell(t, f, sheet, "A9"))
	assert.Equal(t, "-3", cell(t, f, sheet, "B9"))
	assert.Equal(t, "", cell(t, f, sheet, "A10"))

	// Original data starts below the block.
	assert.Equal(t, "ts_event", cell(t, f, sheet, "A13"))
	assert.Equal(t, "2024-01-16 10:45:00", cell(t, f, sheet, "A14"))

	keyStyle, err := f.GetCellStyle(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, styles.Key, keyStyle)
	valueStyle, err := f.GetCellStyle(sheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, styles.Bordered, valueStyle)
	titleStyle, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, styles.Title, titleStyle)
}

func TestInjectRegistersStylesWhenNil(t *testing.T) {
	f := mergedWorkbook(t)
	rec := Extract(buyTable(), "Buy_0115_0930")
	require.NoError(t, Inject(f, "Buy_0115_0930", rec, nil))
	assert.Equal(t, "Profit Filled", cell(t, f, "Buy_0115_0930", "B8"))
}

// =============================================================================
// AGGREGATOR
// =============================================================================

func TestAggregate(t *testing.T) {
	f := mergedWorkbook(t)
	records := []Record{
		Extract(buyTable(), "Buy_0115_0930"),
		Extract(sellTable(), "Sell_0116_1045"),
	}

	require.NoError(t, Aggregate(f, records, nil))

	sheets := f.GetSheetList()
	require.Len(t, sheets, 3)
	assert.Equal(t, AggregateSheet, sheets[0])
	assert.Equal(t, 0, f.GetActiveSheetIndex())

	rows, err := f.GetRows(AggregateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Keys(), rows[0])

	width, err := f.GetColWidth(AggregateSheet, "F")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Resolution Price")+2), width)

	width, err = f.GetColWidth(AggregateSheet, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(len("2024-01-15 09:30:00")+2), width)
}

func TestAggregateCapsColumnWidth(t *testing.T) {
	f := mergedWorkbook(t)
	long := strings.Repeat("x", 300)
	table := types.NewTable(
		[]string{"ts_event", "Buy Open Price", "P/L"},
		[][]string{{long, "4801.5", long}},
	)

	require.NoError(t, Aggregate(f, []Record{Extract(table, "Buy_0115_0930")}, nil))

	for _, col := range []string{"C", "H"} {
		width, err := f.GetColWidth(AggregateSheet, col)
		require.NoError(t, err)
		assert.Equal(t, float64(excelize.MaxColumnWidth), width, col)
	}

	rows, err := f.GetRows(AggregateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, long, rows[1][2])
}

func TestAggregateNoRecords(t *testing.T) {
	f := mergedWorkbook(t)
	require.NoError(t, Aggregate(f, nil, nil))

	rows, err := f.GetRows(AggregateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Keys(), rows[0])
}

func TestAggregateReplacesExisting(t *testing.T) {
	f := mergedWorkbook(t)
	require.NoError(t, Aggregate(f, nil, nil))
	require.NoError(t, Aggregate(f, []Record{Extract(buyTable(), "Buy_0115_0930")}, nil))

	sheets := f.GetSheetList()
	assert.Len(t, sheets, 3)
	assert.Equal(t, AggregateSheet, sheets[0])
	rows, err := f.GetRows(AggregateSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

// =============================================================================
// SUMMARIZER
// =============================================================================

func TestSummarizeEndToEnd(t *testing.T) {
	f := mergedWorkbook(t)
	_, err := f.NewSheet(LegacySummarySheet)
	require.NoError(t, err)
	_, err = f.NewSheet("Empty")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Empty", "A1", &[]interface{}{"ts_event"}))

	out, report, err := Summarize(f, nil)
	require.NoError(t, err)
	assert.Same(t, f, out)
	assert.Equal(t, 2, report.Summarized())
	require.Len(t, report.Sheets, 4)
	assert.Equal(t, StatusSkipped, report.Sheets[2].Status)
	assert.Equal(t, StatusSkipped, report.Sheets[3].Status)

	assert.Equal(t, AggregateSheet, f.GetSheetName(0))

	rows, err := f.GetRows(AggregateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Buy_0115_0930", "Buy", "2024-01-15 09:30:00", "2024-01-15 09:33:00",
		"4801.5", "4810.25", "Profit Filled", "12.5",
	}, rows[1])
	assert.Equal(t, []string{
		"Sell_0116_1045", "Sell", "2024-01-16 10:45:00", NotResolved,
		"4780.25", "", "", "-3",
	}, rows[2])

	// Both data sheets carry a summary block; skipped sheets do not.
	assert.Equal(t, Title, cell(t, f, "Buy_0115_0930", "A1"))
	assert.Equal(t, "ts_event", cell(t, f, "Buy_0115_0930", "A13"))
	assert.Equal(t, "ts_event", cell(t, f, "Empty", "A1"))
}

func TestSummarizeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "merged.xlsx")
	out := filepath.Join(dir, "summary.xlsx")

	w, err := xlsxwriter.NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddTable("Buy_0115_0930", buyTable()))
	require.NoError(t, w.SaveAs(in))
	require.NoError(t, w.Close())

	report, err := SummarizeFile(in, out, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summarized())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{AggregateSheet, "Buy_0115_0930"}, f.GetSheetList())
}

func TestSummarizeFileMissingInput(t *testing.T) {
	_, err := SummarizeFile(filepath.Join(t.TempDir(), "nope.xlsx"), "out.xlsx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open merged workbook")
}
