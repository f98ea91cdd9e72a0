package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/resolved-trades/internal/types"
)

func TestExtractProfitBeatsEarlierStop(t *testing.T) {
	table := types.NewTable(
		[]string{"ts_event", "Buy Open Price", "Stop Filled", "Profit Filled", "P/L"},
		[][]string{
			{"t0", "100.5", "", "", "3.25"},
			{"t1", "", "99.0", "", ""},
			{"t2", "", "", "", ""},
			{"t3", "", "", "104.75", ""},
		},
	)

	rec := Extract(table, "Buy_0115_0930")

	assert.Equal(t, "Buy_0115_0930", rec.Sheet)
	assert.Equal(t, SideBuy, rec.Side)
	assert.Equal(t, "t0", rec.TSEntry.String())
	assert.Equal(t, "t3", rec.TSResolved.String())
	assert.Equal(t, "104.75", rec.ResolutionPrice.String())
	assert.Equal(t, ResolutionProfit, rec.Resolution)
	assert.Equal(t, "100.5", rec.OpenPrice.String())
	assert.Equal(t, "3.25", rec.PL.String())
}

func TestExtractStopFallback(t *testing.T) {
	table := types.NewTable(
		[]string{"ts_event", "Profit Filled", "Stop Filled"},
		[][]string{
			{"t0", "", ""},
			{"t1", "", "98.5"},
		},
	)

	rec := Extract(table, "Sell_0116_1045")

	assert.Equal(t, SideSell, rec.Side)
	assert.Equal(t, ResolutionStop, rec.Resolution)
	assert.Equal(t, "t1", rec.TSResolved.String())
	assert.Equal(t, "98.5", rec.ResolutionPrice.String())
}

func TestExtractNoOptionalColumns(t *testing.T) {
	table := types.NewTable([]string{"other"}, [][]string{{"x"}})

	assert.NotPanics(t, func() {
		rec := Extract(table, "Sell_0116_1045")
		assert.True(t, rec.TSEntry.IsNull())
		assert.Equal(t, NotResolved, rec.TSResolved.String())
		assert.True(t, rec.OpenPrice.IsNull())
		assert.True(t, rec.ResolutionPrice.IsNull())
		assert.Equal(t, ResolutionNone, rec.Resolution)
		assert.True(t, rec.PL.IsNull())
	})
}

func TestExtractOpenPriceFallsBackToSell(t *testing.T) {
	table := types.NewTable(
		[]string{"ts_event", "Sell Open Price"},
		[][]string{{"t0", ""}, {"t1", "4780.25"}},
	)
	rec := Extract(table, "Buy_0115_0930")
	assert.Equal(t, "4780.25", rec.OpenPrice.String())

	// An all-null buy column also falls through to the sell column.
	table = types.NewTable(
		[]string{"Buy Open Price", "Sell Open Price"},
		[][]string{{"", "12"}},
	)
	assert.Equal(t, "12", Extract(table, "x").OpenPrice.String())
}

func TestExtractResolvedWithoutTimestampColumn(t *testing.T) {
	table := types.NewTable([]string{"Profit Filled"}, [][]string{{"5"}})
	rec := Extract(table, "Buy")
	assert.Equal(t, ResolutionProfit, rec.Resolution)
	assert.True(t, rec.TSResolved.IsNull())
}

func TestSideIsCaseSensitiveSubstring(t *testing.T) {
	tests := []struct {
		sheet string
		want  Side
	}{
		{"Buy_0115_0930", SideBuy},
		{"XBuyY", SideBuy},
		{"buy_0115_0930", SideSell},
		{"Sell_0116_1045", SideSell},
		{"Sheet", SideSell},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			assert.Equal(t, tt.want, sideOf(tt.sheet))
		})
	}
}

func TestRecordFieldsOrder(t *testing.T) {
	rec := Extract(types.NewTable(nil, nil), "Buy_1")
	fields := rec.Fields()

	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	assert.Equal(t, Keys(), keys)
	assert.Equal(t, []string{
		"Sheet", "Buy/Sell", "TS Entry", "TS Resolved",
		"Open Price", "Resolution Price", "Stop/Profit Filled", "P/L",
	}, keys)
	assert.True(t, fields[6].Value.IsNull())
}
