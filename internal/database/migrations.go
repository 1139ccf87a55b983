package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		run_timestamp VARCHAR(32) NOT NULL,
		item VARCHAR(255) NOT NULL,
		item_type VARCHAR(255) NOT NULL,
		color VARCHAR(255) NOT NULL,
		price VARCHAR(64) NOT NULL,
		state VARCHAR(50) NOT NULL,
		reached VARCHAR(50) NOT NULL,
		passed BOOLEAN NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		screenshots TEXT[] NOT NULL DEFAULT '{}',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_passed ON runs(passed);
	`

// RunMigrations creates the run history tables
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.Exec(createRunsTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	log.Debug().Msg("Database migrations completed successfully")
	return nil
}
