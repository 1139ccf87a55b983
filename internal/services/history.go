package services

import (
	"errors"
	"fmt"

	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/models"
)

// DefaultHistoryLimit is how many runs the history listing shows by default
const DefaultHistoryLimit = 10

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	ListRecentRuns(limit int) ([]*models.Run, error)
}

// RunRecorder stores finished runs
type RunRecorder interface {
	Record(run *models.Run) error
}

// RunService handles run history business logic
type RunService interface {
	RunRecorder
	Recent(limit int) ([]*models.Run, error)
	Get(id string) (*models.Run, error)
}

// ErrRunNotFinished is returned when recording a run that has not been torn down
var ErrRunNotFinished = errors.New("run has not been torn down")

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runRepo RunRepository
}

// NewRunService creates a new run service
func NewRunService(runRepo RunRepository) RunService {
	return &RunServiceImpl{
		runRepo: runRepo,
	}
}

// Record persists a finished run
func (s *RunServiceImpl) Record(run *models.Run) error {
	if !run.IsTornDown() {
		return ErrRunNotFinished
	}
	if err := s.runRepo.CreateRun(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first. A non-positive limit uses
// DefaultHistoryLimit.
func (s *RunServiceImpl) Recent(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := s.runRepo.ListRecentRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get retrieves a run by id
func (s *RunServiceImpl) Get(id string) (*models.Run, error) {
	run, err := s.runRepo.GetRun(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// NoopRecorder discards runs; used when no history database is configured
type NoopRecorder struct{}

// Record does nothing
func (NoopRecorder) Record(*models.Run) error {
	return nil
}

// Recent reports that history is disabled
func (NoopRecorder) Recent(int) ([]*models.Run, error) {
	return nil, config.ErrHistoryDisabled
}

// Get reports that history is disabled
func (NoopRecorder) Get(string) (*models.Run, error) {
	return nil, config.ErrHistoryDisabled
}
