// =============================================================================
// Resolved Trades Consolidator - CSV Loader
// =============================================================================
//
// This module loads a comma-separated resolved-trade file into a Table.
//
// FORMAT:
//   - The first record is the header row.
//   - Every following record is a data row. Blank lines are skipped by the
//     reader; a row of empty fields is kept as an all-null row.
//   - Rows may be ragged: short rows are padded with nulls.
//   - Empty headers become "Unnamed: <index>"; repeated headers get a
//     ".1", ".2", ... suffix so every column stays addressable.
//
// A file with no header row at all is a load failure (ErrEmptyFile). A file
// with only a header row loads as a table with zero data rows.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/resolved-trades/internal/types"
)

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("no columns to parse from file")

// utf8BOM is stripped from the first header when present.
const utf8BOM = "\uFEFF"

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how CSV files are read.
type Settings struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
}

// DefaultSettings returns comma-delimited settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ','}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the CSV file at filePath using the default settings.
func Parse(filePath string) (*types.Table, error) {
	return ParseWithSettings(filePath, DefaultSettings())
}

// ParseWithSettings reads the CSV file at filePath.
func ParseWithSettings(filePath string, settings Settings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Read(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// Read parses CSV content from r.
func Read(r io.Reader, settings Settings) (*types.Table, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := CleanHeaders(allRows[0])
	return types.NewTable(headers, allRows[1:]), nil
}

// configureReader applies settings to the CSV reader.
func configureReader(reader *csv.Reader, settings Settings) {
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Ragged rows are padded by the table builder.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// =============================================================================
// HEADERS
// =============================================================================

// CleanHeaders trims header names, names empty headers after their position
// and de-duplicates repeats. It is shared with the spreadsheet loader.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Unnamed: %d", i)
		}

		name := header
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", header, n)
		}
		used[name] = true

		cleaned[i] = name
	}

	return cleaned
}
