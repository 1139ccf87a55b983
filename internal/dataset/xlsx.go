package dataset

import (
	"context"
	"fmt"

	"github.com/qanai/shopflow/internal/models"
	"github.com/xuri/excelize/v2"
)

// columns is the number of cells read from the data row: item, type, color, price
const columns = 4

var header = []interface{}{"Item", "Type", "Color", "Price"}

// XLSXSource reads the test case from a local workbook
type XLSXSource struct {
	path  string
	sheet string
	row   int
}

// NewXLSXSource creates a source for the given workbook, sheet and zero-based row
func NewXLSXSource(path, sheet string, row int) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet, row: row}
}

// Load opens the workbook and reads the four string cells of the data row
func (s *XLSXSource) Load(_ context.Context) (models.TestCase, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return models.TestCase{}, &FileAccessError{Path: s.path, Err: err}
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil || idx < 0 {
		return models.TestCase{}, sheetError(s.sheet, "sheet not found")
	}

	values := make([]string, columns)
	empty := 0
	for col := 0; col < columns; col++ {
		cell, err := excelize.CoordinatesToCellName(col+1, s.row+1)
		if err != nil {
			return models.TestCase{}, rowError(s.sheet, s.row, err.Error())
		}

		value, err := f.GetCellValue(s.sheet, cell)
		if err != nil {
			return models.TestCase{}, cellError(s.sheet, s.row, col, err.Error())
		}
		if value == "" {
			empty++
			continue
		}

		typ, err := f.GetCellType(s.sheet, cell)
		if err != nil {
			return models.TestCase{}, cellError(s.sheet, s.row, col, err.Error())
		}
		if typ != excelize.CellTypeSharedString && typ != excelize.CellTypeInlineString {
			return models.TestCase{}, cellError(s.sheet, s.row, col, fmt.Sprintf("cell %s is not a string", cell))
		}
		values[col] = value
	}

	if empty == columns {
		return models.TestCase{}, rowError(s.sheet, s.row, "row not found")
	}
	return buildTestCase(s.sheet, s.row, values)
}

// WriteSample writes a workbook with a header row and one data row, the
// layout XLSXSource expects
func WriteSample(path, sheet string, tc models.TestCase) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	row := []interface{}{tc.Item, tc.Type, tc.Color, tc.Price}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		return fmt.Errorf("failed to write data row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// buildTestCase maps the four cells onto a test case, reporting the first
// missing one
func buildTestCase(sheet string, row int, values []string) (models.TestCase, error) {
	for col, v := range values {
		if v == "" {
			return models.TestCase{}, cellError(sheet, row, col, "cell is empty")
		}
	}
	return models.NewTestCase(values[0], values[1], values[2], values[3])
}
