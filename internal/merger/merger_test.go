package merger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/resolved-trades/internal/csvparser"
	"github.com/ginjaninja78/resolved-trades/internal/summary"
	"github.com/ginjaninja78/resolved-trades/internal/types"
)

const buyCSV = `ts_event,Buy Open Price,Profit Filled,P/L
2024-01-15 09:30:00,4801.5,,12.5
2024-01-15 09:31:00,,,
2024-01-15 09:32:00,,,
2024-01-15 09:33:00,,4810.25,
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

// sourceTree lays out a source root with one file per merge outcome.
func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a", "Buy_20240115_0930_Resolved.csv"), buyCSV)
	writeWorkbook(t, filepath.Join(root, "b", "Sell_20240116_1045_Resolved.xlsx"), [][]interface{}{
		{"ts_event", "Sell Open Price", "P/L"},
		{"2024-01-16 10:45:00", 4780.25, -3},
		{"2024-01-16 10:46:00", nil, nil},
	})
	writeFile(t, filepath.Join(root, "c", "Buy_20240115_0930_Resolved.txt"), "not a table")
	writeFile(t, filepath.Join(root, "d", "Sell_20240117_1100_Resolved.csv"), "")
	writeFile(t, filepath.Join(root, "e", "Buy_20240115_0930_Resolved.backup.csv"), buyCSV)
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	return root
}

func newTestMerger(t *testing.T, root string) (*Merger, Options) {
	t.Helper()
	out := t.TempDir()
	opts := Options{
		SourceRoot: root,
		StagingDir: filepath.Join(out, "staging"),
		Output:     filepath.Join(out, "merged", "Merged_Resolved.xlsx"),
	}
	return New(opts, nil), opts
}

func TestRun(t *testing.T) {
	m, opts := newTestMerger(t, sourceTree(t))

	report, err := m.Run()
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Discovered)
	assert.Equal(t, 5, report.Copied)
	assert.Equal(t, 3, report.SheetsWritten())

	require.Len(t, report.Results, 5)
	statuses := make([]Status, len(report.Results))
	for i, res := range report.Results {
		statuses[i] = res.Status
	}
	assert.Equal(t, []Status{StatusAdded, StatusAdded, StatusUnsupported, StatusLoadFailed, StatusAdded}, statuses)

	assert.ErrorIs(t, report.Results[2].Err, ErrUnsupportedFormat)
	assert.ErrorIs(t, report.Results[3].Err, csvparser.ErrEmptyFile)
	assert.Len(t, report.Failed(), 2)

	assert.Equal(t, "Buy_0115_0930", report.Results[0].Sheet)
	assert.Equal(t, 4, report.Results[0].Rows)
	assert.Equal(t, "Sell_0116_1045", report.Results[1].Sheet)
	assert.Equal(t, "Buy_0115_0930_1", report.Results[4].Sheet)

	staged, err := os.ReadDir(opts.StagingDir)
	require.NoError(t, err)
	assert.Len(t, staged, 5)

	f, err := excelize.OpenFile(opts.Output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Buy_0115_0930", "Sell_0116_1045", "Buy_0115_0930_1"}, f.GetSheetList())

	rows, err := f.GetRows("Buy_0115_0930")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"ts_event", "Buy Open Price", "Profit Filled", "P/L"}, rows[0])
}

func TestRunThenSummarize(t *testing.T) {
	m, opts := newTestMerger(t, sourceTree(t))
	_, err := m.Run()
	require.NoError(t, err)

	out := filepath.Join(filepath.Dir(opts.Output), "Merged_Resolved_summary.xlsx")
	report, err := summary.SummarizeFile(opts.Output, out, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summarized())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, summary.AggregateSheet, f.GetSheetName(0))
	rows, err := f.GetRows(summary.AggregateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"Buy_0115_0930", "Buy", "2024-01-15 09:30:00", "2024-01-15 09:33:00",
		"4801.5", "4810.25", "Profit Filled", "12.5",
	}, rows[1])
	assert.Equal(t, []string{
		"Sell_0116_1045", "Sell", "2024-01-16 10:45:00", summary.NotResolved,
		"4780.25", "", "", "-3",
	}, rows[2])
}

func TestRunNoFiles(t *testing.T) {
	m, opts := newTestMerger(t, t.TempDir())

	report, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Discovered)
	assert.Equal(t, 0, report.SheetsWritten())

	f, err := excelize.OpenFile(opts.Output)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 1)
}

func TestRunMissingSourceRoot(t *testing.T) {
	m, _ := newTestMerger(t, filepath.Join(t.TempDir(), "missing"))
	_, err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to walk source directory")
}

func TestRunStagingInsideSourceRoot(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		staging string
	}{
		{"staging is source root", "Buy_20240115_0930_Resolved.csv", "."},
		{"staging below source root", filepath.Join("a", "Buy_20240115_0930_Resolved.csv"), "staging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			src := filepath.Join(root, tt.src)
			writeFile(t, src, buyCSV)

			opts := Options{
				SourceRoot: root,
				StagingDir: filepath.Join(root, tt.staging),
				Output:     filepath.Join(t.TempDir(), "merged.xlsx"),
			}

			// A second run must not pick up or clobber the first run's copies.
			for run := 0; run < 2; run++ {
				report, err := New(opts, nil).Run()
				require.NoError(t, err)
				require.Len(t, report.Results, 1, "run %d", run)
				assert.Equal(t, StatusAdded, report.Results[0].Status, "run %d", run)
				assert.Equal(t, 4, report.Results[0].Rows)
			}

			data, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, buyCSV, string(data))
		})
	}
}

// recordingProgress records events and whether the workbook existed yet.
type recordingProgress struct {
	output string
	staged []int
	merged []Status
	saved  bool
}

func (p *recordingProgress) Staged(copied int) {
	p.staged = append(p.staged, copied)
}

func (p *recordingProgress) Merged(res Result) {
	p.merged = append(p.merged, res.Status)
	if _, err := os.Stat(p.output); err == nil {
		p.saved = true
	}
}

func TestRunReportsProgressWhileRunning(t *testing.T) {
	m, opts := newTestMerger(t, sourceTree(t))
	progress := &recordingProgress{output: opts.Output}

	report, err := m.WithProgress(progress).Run()
	require.NoError(t, err)

	assert.Equal(t, []int{5}, progress.staged)
	assert.Equal(t, []Status{StatusAdded, StatusAdded, StatusUnsupported, StatusLoadFailed, StatusAdded}, progress.merged)
	assert.False(t, progress.saved, "events must arrive before the workbook is saved")
	assert.Len(t, report.Results, 5)
}

func TestRunCustomLoader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Buy_20240115_0930_Resolved.txt"), "x")
	writeFile(t, filepath.Join(root, "Buy_20240115_0931_Resolved.txt"), "x")

	m, _ := newTestMerger(t, root)
	m.WithLoader("txt", func(path string) (*types.Table, error) {
		if filepath.Base(path) == "Buy_20240115_0931_Resolved.txt" {
			return nil, errors.New("boom")
		}
		return types.NewTable([]string{"ts_event"}, [][]string{{"t0"}}), nil
	})

	report, err := m.Run()
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, StatusAdded, report.Results[0].Status)
	assert.Equal(t, StatusLoadFailed, report.Results[1].Status)
	assert.Contains(t, report.Results[1].Err.Error(), "boom")
}

func TestRunSummary(t *testing.T) {
	m, _ := newTestMerger(t, sourceTree(t))
	report, err := m.Run()
	require.NoError(t, err)

	s := report.RunSummary()
	assert.Equal(t, report.RunID, s.RunID)
	assert.Len(t, s.AddedFiles, 3)
	require.Len(t, s.FailedFiles, 2)
	assert.Equal(t, string(StatusUnsupported), s.FailedFiles[0].ErrorType)
}
