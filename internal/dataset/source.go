// Package dataset loads the expected product data for a run from a spreadsheet.
package dataset

import (
	"context"
	"strings"

	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/models"
	"google.golang.org/api/option"
)

// Source yields the test case for a run
type Source interface {
	Load(ctx context.Context) (models.TestCase, error)
}

// FromConfig picks the Google Sheets or workbook source for the configured data location
func FromConfig(cfg *config.RunConfig) Source {
	if cfg.UsesGoogleSheets() {
		id := strings.TrimPrefix(cfg.DataFile, config.GoogleSheetsScheme)
		var opts []option.ClientOption
		if cfg.GoogleCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
		}
		return NewSheetsSource(id, cfg.Sheet, cfg.Row, opts...)
	}
	return NewXLSXSource(cfg.DataFile, cfg.Sheet, cfg.Row)
}
