// Package export writes the observation log and chart to files.
package export

import (
	"fmt"
	"io"

	"github.com/theirongolddev/weightlog/internal/model"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet naming, kept compatible with the historical export.
const (
	XLSXFilename = "gewicht_log.xlsx"
	SheetName    = "Gewicht Log"
)

// WriteXLSX writes log as a single-sheet workbook with Datum and Gewicht
// columns.
func WriteXLSX(w io.Writer, log model.Log) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("yyyy-mm-dd")})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &[]any{"Datum", "Gewicht"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, o := range log {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]any{o.Date, o.Weight}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
			return fmt.Errorf("styling row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
