// =============================================================================
// Resolved Trades Consolidator - Workbook Styles
// =============================================================================
//
// This module registers the cell styles used by the merged and summary
// workbooks and applies them to cell ranges.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Style colours and sizes shared by every generated sheet.
const (
	// FillColor is the light grey behind summary keys and report headers.
	FillColor = "DDDDDD"

	// BorderColor is used for all thin borders.
	BorderColor = "000000"

	// TitleSize is the font size of the summary block title.
	TitleSize = 14

	// borderThin is excelize's style index for a thin line.
	borderThin = 1

	// patternSolid is excelize's pattern index for a solid fill.
	patternSolid = 1
)

// Styles holds the style IDs registered in one workbook. Style IDs are only
// meaningful for the workbook that created them.
type Styles struct {
	// TableHeader is applied to the header row of every data sheet:
	// bold, thin border, centered.
	TableHeader int

	// Title is the "SUMMARY TABLE" banner: bold, size 14, centered.
	Title int

	// Key is a summary key cell: bold, light fill, thin border.
	Key int

	// Bordered is a thin border on all four sides and nothing else.
	Bordered int

	// ReportHeader is an aggregate report header cell: bold, light fill,
	// thin border, centered.
	ReportHeader int
}

// NewStyles registers the shared styles in f.
func NewStyles(f *excelize.File) (*Styles, error) {
	s := &Styles{}
	var err error

	if s.TableHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create table header style: %w", err)
	}

	if s.Title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: TitleSize},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	if s.Key, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   solidFill(),
		Border: thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("failed to create key style: %w", err)
	}

	if s.Bordered, err = f.NewStyle(&excelize.Style{
		Border: thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("failed to create border style: %w", err)
	}

	if s.ReportHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      solidFill(),
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create report header style: %w", err)
	}

	return s, nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: BorderColor, Style: borderThin},
		{Type: "right", Color: BorderColor, Style: borderThin},
		{Type: "top", Color: BorderColor, Style: borderThin},
		{Type: "bottom", Color: BorderColor, Style: borderThin},
	}
}

func solidFill() excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{FillColor}, Pattern: patternSolid}
}

// StyleCell applies style to a single cell.
func StyleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

// StyleRange applies style to the rectangle between two coordinates.
func StyleRange(f *excelize.File, sheet string, col1, row1, col2, row2, style int) error {
	top, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, top, bottom, style)
}
