package services

import (
	"errors"
	"testing"
	"time"

	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRunRepository is a mock implementation of RunRepository for testing
type MockRunRepository struct {
	CreateRunFunc      func(*models.Run) error
	GetRunFunc         func(string) (*models.Run, error)
	ListRecentRunsFunc func(int) ([]*models.Run, error)
}

func (m *MockRunRepository) CreateRun(run *models.Run) error {
	if m.CreateRunFunc != nil {
		return m.CreateRunFunc(run)
	}
	return nil
}

func (m *MockRunRepository) GetRun(id string) (*models.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(id)
	}
	return &models.Run{ID: id}, nil
}

func (m *MockRunRepository) ListRecentRuns(limit int) ([]*models.Run, error) {
	if m.ListRecentRunsFunc != nil {
		return m.ListRecentRunsFunc(limit)
	}
	return nil, nil
}

func tornDownRun(t *testing.T) *models.Run {
	t.Helper()
	run := models.NewRun(models.TestCase{Item: "Echo Dot", Type: "Smart Speaker", Color: "Charcoal", Price: "$49.99"}, time.Now())
	require.NoError(t, run.TearDown(errors.New("browser crashed")))
	return run
}

func TestRunService_Record(t *testing.T) {
	tests := []struct {
		name      string
		run       func(t *testing.T) *models.Run
		mockError error
		wantErr   error
		wantSaved bool
	}{
		{
			name:      "finished run is stored",
			run:       tornDownRun,
			wantSaved: true,
		},
		{
			name: "running run is rejected",
			run: func(t *testing.T) *models.Run {
				return models.NewRun(models.TestCase{}, time.Now())
			},
			wantErr: ErrRunNotFinished,
		},
		{
			name:      "repository error",
			run:       tornDownRun,
			mockError: errors.New("database error"),
			wantErr:   errors.New("database error"),
			wantSaved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			saved := false
			repo := &MockRunRepository{
				CreateRunFunc: func(*models.Run) error {
					saved = true
					return tt.mockError
				},
			}
			service := NewRunService(repo)

			// WHEN
			err := service.Record(tt.run(t))

			// THEN
			assert.Equal(t, tt.wantSaved, saved)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case tt.mockError != nil:
				assert.ErrorIs(t, err, tt.mockError)
				assert.Contains(t, err.Error(), "failed to record run")
			default:
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRunService_Recent(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "explicit limit", limit: 3, wantLimit: 3},
		{name: "zero uses default", limit: 0, wantLimit: DefaultHistoryLimit},
		{name: "negative uses default", limit: -1, wantLimit: DefaultHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			repo := &MockRunRepository{
				ListRecentRunsFunc: func(limit int) ([]*models.Run, error) {
					gotLimit = limit
					return []*models.Run{{ID: "a"}}, nil
				},
			}

			runs, err := NewRunService(repo).Recent(tt.limit)

			require.NoError(t, err)
			assert.Len(t, runs, 1)
			assert.Equal(t, tt.wantLimit, gotLimit)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		boom := errors.New("connection refused")
		repo := &MockRunRepository{
			ListRecentRunsFunc: func(int) ([]*models.Run, error) { return nil, boom },
		}

		_, err := NewRunService(repo).Recent(5)

		assert.ErrorIs(t, err, boom)
	})
}

func TestRunService_Get(t *testing.T) {
	service := NewRunService(&MockRunRepository{})

	run, err := service.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", run.ID)

	notFound := errors.New("run not found")
	service = NewRunService(&MockRunRepository{
		GetRunFunc: func(string) (*models.Run, error) { return nil, notFound },
	})
	_, err = service.Get("abc")
	assert.ErrorIs(t, err, notFound)
}

func TestNoopRecorder(t *testing.T) {
	var recorder NoopRecorder

	assert.NoError(t, recorder.Record(tornDownRun(t)))

	_, err := recorder.Recent(5)
	assert.ErrorIs(t, err, config.ErrHistoryDisabled)
	_, err = recorder.Get("abc")
	assert.ErrorIs(t, err, config.ErrHistoryDisabled)
}
