// Package excel writes analysis tables to an xlsx workbook, one sheet
// per table.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"aline/internal/report"
)

// ReportWriter persists report tables as an Excel workbook.
type ReportWriter struct {
	filePath string
}

// NewReportWriter creates a writer targeting the given path.
func NewReportWriter(filePath string) *ReportWriter {
	return &ReportWriter{filePath: filePath}
}

// Write saves every table to its own sheet, headers in row 1.
func (w *ReportWriter) Write(tables ...report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for idx, t := range tables {
		sheet := sheetName(t.Title, idx)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		if err := writeRow(f, sheet, 1, t.Headers); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := writeRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	for j, cell := range cells {
		ref, err := excelize.CoordinatesToCellName(j+1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, ref, cell); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", ref, err)
		}
	}
	return nil
}

// sheetName truncates titles to Excel's 31-char sheet limit.
func sheetName(title string, idx int) string {
	if title == "" {
		return fmt.Sprintf("Table%d", idx+1)
	}
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
