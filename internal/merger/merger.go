// =============================================================================
// Resolved Trades Consolidator - Merger Module
// =============================================================================
//
// This module contains the merge pipeline. It turns a tree of resolved-trade
// files into one workbook with one sheet per file.
//
// MERGE PIPELINE:
//   1. Create the staging directory and the output directory
//   2. Walk the source tree for "*_Resolved" files (lexical order)
//   3. Copy every discovered file into the staging directory
//   4. For each discovered file, in walk order:
//        a. pick a loader by extension (csv, xlsx, xls)
//        b. load the file into a Table
//        c. derive a sheet name and make it unique
//        d. write the Table as a new sheet
//   5. Save the workbook
//
// FAILURE HANDLING:
//   Steps 1, 2, 3 and 5 are fatal. Step 4 failures are per file: the file
//   gets a failure Result, is logged, and the run continues. A failed file
//   does not reserve a sheet name.
//
// CONCURRENCY:
//   None. Files are processed one at a time, in order, against a single
//   workbook and name registry.
//
// =============================================================================

package merger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/resolved-trades/internal/csvparser"
	"github.com/ginjaninja78/resolved-trades/internal/sheetname"
	"github.com/ginjaninja78/resolved-trades/internal/types"
	"github.com/ginjaninja78/resolved-trades/internal/xlsxparser"
	"github.com/ginjaninja78/resolved-trades/internal/xlsxwriter"
	"github.com/ginjaninja78/resolved-trades/pkg/utils"
)

// ErrUnsupportedFormat is the cause recorded for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status is the outcome of merging one file.
type Status string

const (
	// StatusAdded means the file was written as a sheet.
	StatusAdded Status = "added"

	// StatusUnsupported means the extension has no loader.
	StatusUnsupported Status = "unsupported"

	// StatusLoadFailed means the loader returned an error.
	StatusLoadFailed Status = "load_failed"
)

// Result represents the outcome of merging a single file.
type Result struct {
	// Source is the discovered file.
	Source types.SourceFile

	// Status is the outcome.
	Status Status

	// Sheet is the assigned sheet name. Empty unless Status is StatusAdded.
	Sheet string

	// Rows is the number of data rows written.
	Rows int

	// Err is the cause of a failure. Nil when Status is StatusAdded.
	Err error
}

// Report describes one merge run.
type Report struct {
	// RunID identifies the run in logs and the run log file.
	RunID string

	// StartTime and EndTime bracket the run.
	StartTime time.Time
	EndTime   time.Time

	// Output is the saved workbook path.
	Output string

	// Discovered is the number of qualifying files found.
	Discovered int

	// Copied is the number of files copied to staging.
	Copied int

	// Results holds one entry per discovered file, in walk order.
	Results []Result
}

// SheetsWritten returns the number of sheets added to the workbook.
func (r *Report) SheetsWritten() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusAdded {
			n++
		}
	}
	return n
}

// Failed returns the results that were not added.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status != StatusAdded {
			out = append(out, res)
		}
	}
	return out
}

// RunSummary converts the report into the run log structure.
func (r *Report) RunSummary() utils.RunSummary {
	s := utils.RunSummary{
		RunID:        r.RunID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		MergedOutput: r.Output,
		Discovered:   r.Discovered,
		Copied:       r.Copied,
	}
	for _, res := range r.Results {
		if res.Status == StatusAdded {
			s.AddedFiles = append(s.AddedFiles, utils.AddedFileInfo{
				SourceFile: res.Source.Path,
				Sheet:      res.Sheet,
				Rows:       res.Rows,
			})
			continue
		}
		s.FailedFiles = append(s.FailedFiles, utils.FailedFileInfo{
			SourceFile:   res.Source.Path,
			ErrorType:    string(res.Status),
			ErrorMessage: res.Err.Error(),
		})
	}
	return s
}

// =============================================================================
// MERGER STRUCTURE
// =============================================================================

// Loader reads one source file into a Table.
type Loader func(path string) (*types.Table, error)

// Options configures a merge run.
type Options struct {
	// SourceRoot is the tree searched for "*_Resolved" files.
	SourceRoot string

	// StagingDir receives a flat copy of every discovered file.
	StagingDir string

	// Output is the merged workbook path.
	Output string

	// CSV configures the csv loader. The zero value uses commas.
	CSV csvparser.Settings
}

// Progress receives merge events as they happen.
type Progress interface {
	// Staged is called once, after discovery and staging.
	Staged(copied int)

	// Merged is called after each file, in walk order.
	Merged(res Result)
}

// Merger runs the merge pipeline.
type Merger struct {
	opts     Options
	logger   *slog.Logger
	loaders  map[string]Loader
	progress Progress
}

// DefaultLoaders returns the loaders for the supported extensions.
func DefaultLoaders(csv csvparser.Settings) map[string]Loader {
	return map[string]Loader{
		"csv": func(path string) (*types.Table, error) {
			return csvparser.ParseWithSettings(path, csv)
		},
		"xlsx": xlsxparser.Parse,
		"xls":  xlsxparser.ParseXLS,
	}
}

// New creates a new Merger.
//
// PARAMETERS:
//   - opts: The source, staging and output locations.
//   - logger: Receives per-file progress. Nil uses slog.Default().
func New(opts Options, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		opts:    opts,
		logger:  logger,
		loaders: DefaultLoaders(opts.CSV),
	}
}

// WithLoader registers or replaces the loader for ext (lower case, no dot).
func (m *Merger) WithLoader(ext string, loader Loader) *Merger {
	m.loaders[ext] = loader
	return m
}

// WithProgress registers p to receive merge events. Nil disables them.
func (m *Merger) WithProgress(p Progress) *Merger {
	m.progress = p
	return m
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the merge pipeline.
//
// RETURNS:
//   - A Report with one Result per discovered file.
//   - An error only for fatal failures (directories, walk, copy, save).
func (m *Merger) Run() (*Report, error) {
	report := &Report{
		RunID:     utils.NewRunID(),
		StartTime: time.Now(),
		Output:    m.opts.Output,
	}
	log := m.logger.With("run_id", report.RunID)

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	if err := utils.EnsureDirectories(m.opts.StagingDir); err != nil {
		return nil, err
	}
	if err := utils.EnsureParentDir(m.opts.Output); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2-3: DISCOVER AND STAGE
	// =========================================================================

	fm := utils.NewFileManager(m.opts.SourceRoot, m.opts.StagingDir)

	files, err := fm.Discover(sheetname.IsResolved)
	if err != nil {
		return nil, err
	}
	report.Discovered = len(files)

	copied, err := fm.Stage(files)
	report.Copied = copied
	if err != nil {
		return nil, err
	}
	log.Info("staged source files", "discovered", report.Discovered, "copied", report.Copied)
	if m.progress != nil {
		m.progress.Staged(report.Copied)
	}

	// =========================================================================
	// STEP 4: LOAD, NAME, WRITE
	// =========================================================================

	w, err := xlsxwriter.NewWriter()
	if err != nil {
		return nil, err
	}
	defer w.Close()

	registry := sheetname.NewRegistry()

	for _, path := range files {
		res := m.mergeFile(w, registry, sheetname.Parse(path))
		switch res.Status {
		case StatusAdded:
			log.Info("added sheet", "sheet", res.Sheet, "file", res.Source.Name, "rows", res.Rows)
		case StatusUnsupported:
			log.Warn("skipping unsupported file", "file", res.Source.Name, "ext", res.Source.Ext)
		default:
			log.Error("failed to load file", "file", res.Source.Name, "error", res.Err)
		}
		report.Results = append(report.Results, res)
		if m.progress != nil {
			m.progress.Merged(res)
		}
	}

	// =========================================================================
	// STEP 5: SAVE
	// =========================================================================

	if report.SheetsWritten() == 0 {
		log.Warn("no sheets written; saving workbook with its default empty sheet")
	}

	if err := w.SaveAs(m.opts.Output); err != nil {
		return nil, err
	}

	report.EndTime = time.Now()
	log.Info("merge complete",
		"output", m.opts.Output,
		"sheets", report.SheetsWritten(),
		"duration", report.EndTime.Sub(report.StartTime))

	return report, nil
}

// mergeFile loads one file and writes it as a sheet.
func (m *Merger) mergeFile(w *xlsxwriter.Writer, registry *sheetname.Registry, src types.SourceFile) Result {
	res := Result{Source: src}

	loader, ok := m.loaders[src.Ext]
	if !ok {
		res.Status = StatusUnsupported
		res.Err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, src.Ext)
		return res
	}

	table, err := loader(src.Path)
	if err != nil {
		res.Status = StatusLoadFailed
		res.Err = fmt.Errorf("failed to load %s: %w", src.Name, err)
		return res
	}

	// The name is only reserved once the sheet is actually written.
	name := registry.Next(sheetname.Derive(src.Name))

	if err := w.AddTable(name, table); err != nil {
		res.Status = StatusLoadFailed
		res.Err = err
		return res
	}
	registry.Reserve(name)

	res.Status = StatusAdded
	res.Sheet = name
	res.Rows = table.Len()
	return res
}
