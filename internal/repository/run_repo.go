package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/qanai/shopflow/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, run_timestamp, item, item_type, color, price, state, reached,
	passed, failure, screenshots, started_at, finished_at`

// RunRepository handles database operations for finished runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository with a specific database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun stores a finished run
func (r *RunRepository) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	screenshots := run.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}

	_, err := r.db.Exec(query,
		run.ID,
		run.Timestamp,
		run.TestCase.Item,
		run.TestCase.Type,
		run.TestCase.Color,
		run.TestCase.Price,
		run.State,
		run.Reached,
		run.Passed,
		run.Failure,
		pq.Array(screenshots),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its id
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRecentRuns returns up to limit runs, newest first
func (r *RunRepository) ListRecentRuns(limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*models.Run, error) {
	run := &models.Run{}
	var screenshots pq.StringArray
	err := row.Scan(
		&run.ID,
		&run.Timestamp,
		&run.TestCase.Item,
		&run.TestCase.Type,
		&run.TestCase.Color,
		&run.TestCase.Price,
		&run.State,
		&run.Reached,
		&run.Passed,
		&run.Failure,
		&screenshots,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Screenshots = []string(screenshots)
	return run, nil
}
