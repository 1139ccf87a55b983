package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/qanai/shopflow/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads the test case from a Google spreadsheet
type SheetsSource struct {
	spreadsheetID string
	sheet         string
	row           int
	opts          []option.ClientOption
}

// NewSheetsSource creates a source for the given spreadsheet. Client options
// carry credentials, or an endpoint override in tests.
func NewSheetsSource(spreadsheetID, sheet string, row int, opts ...option.ClientOption) *SheetsSource {
	return &SheetsSource{
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		row:           row,
		opts:          opts,
	}
}

// Range returns the A1 range covering the four data cells
func (s *SheetsSource) Range() string {
	quoted := "'" + strings.ReplaceAll(s.sheet, "'", "''") + "'"
	return fmt.Sprintf("%s!A%d:D%d", quoted, s.row+1, s.row+1)
}

// Load fetches the data row with unformatted values so numbers stay numbers
func (s *SheetsSource) Load(ctx context.Context) (models.TestCase, error) {
	location := "gsheet://" + s.spreadsheetID

	service, err := sheets.NewService(ctx, s.opts...)
	if err != nil {
		return models.TestCase{}, &FileAccessError{Path: location, Err: fmt.Errorf("failed to create sheets service: %w", err)}
	}

	resp, err := service.Spreadsheets.Values.Get(s.spreadsheetID, s.Range()).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return models.TestCase{}, &FileAccessError{Path: location, Err: fmt.Errorf("failed to read sheet: %w", err)}
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return models.TestCase{}, rowError(s.sheet, s.row, "row not found")
	}

	cells := resp.Values[0]
	values := make([]string, columns)
	for col := 0; col < columns && col < len(cells); col++ {
		str, ok := cells[col].(string)
		if !ok {
			return models.TestCase{}, cellError(s.sheet, s.row, col, fmt.Sprintf("value %v is not a string", cells[col]))
		}
		values[col] = str
	}
	return buildTestCase(s.sheet, s.row, values)
}
