package dataset

import "fmt"

// FileAccessError means the test data could not be opened at all
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read test data from %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// DataFormatError means the data was readable but the expected cells are not there
type DataFormatError struct {
	Sheet  string
	Row    int
	Column int
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("sheet %q row %d: %s", e.Sheet, e.Row, e.Reason)
	}
	return fmt.Sprintf("sheet %q row %d column %d: %s", e.Sheet, e.Row, e.Column, e.Reason)
}

func sheetError(sheet, reason string) *DataFormatError {
	return &DataFormatError{Sheet: sheet, Row: -1, Column: -1, Reason: reason}
}

func rowError(sheet string, row int, reason string) *DataFormatError {
	return &DataFormatError{Sheet: sheet, Row: row, Column: -1, Reason: reason}
}

func cellError(sheet string, row, col int, reason string) *DataFormatError {
	return &DataFormatError{Sheet: sheet, Row: row, Column: col, Reason: reason}
}
