package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/browser/browsertest"
	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/dataset"
	"github.com/qanai/shopflow/internal/models"
	"github.com/qanai/shopflow/internal/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of dataset.Source for testing
type MockSource struct {
	LoadFunc func(ctx context.Context) (models.TestCase, error)
}

func (m *MockSource) Load(ctx context.Context) (models.TestCase, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return models.TestCase{Item: "Echo Dot", Type: "Smart Speaker", Color: "Black", Price: "$49.99"}, nil
}

// MockRecorder is a mock implementation of services.RunRecorder for testing
type MockRecorder struct {
	RecordFunc func(run *models.Run) error
	Recorded   []*models.Run
}

func (m *MockRecorder) Record(run *models.Run) error {
	m.Recorded = append(m.Recorded, run)
	if m.RecordFunc != nil {
		return m.RecordFunc(run)
	}
	return nil
}

const page = `<html><a href="/dp/1">Echo Dot Smart Speaker</a> $49.99</html>`

func createRunDeps(t *testing.T, fake *browsertest.FakeDriver) (RunDependencies, *MockRecorder, *bytes.Buffer) {
	t.Helper()
	recorder := &MockRecorder{}
	out := &bytes.Buffer{}
	cfg := &config.RunConfig{
		DataFile:      "data.xlsx",
		Sheet:         config.DefaultSheet,
		Row:           config.DefaultRow,
		Driver:        config.DriverPlaywright,
		Browser:       "firefox",
		Viewport:      config.Viewport{Width: 1920, Height: 1080},
		TargetURL:     "http://store.test/",
		TitleContains: "Demo Store",
		ScreenshotDir: t.TempDir(),
		Timeouts:      config.DefaultTimeouts(),
	}
	return RunDependencies{
		Config:    cfg,
		Locators:  config.DefaultLocators(),
		Source:    &MockSource{},
		Launcher:  fake.Launcher(),
		Recorder:  recorder,
		Out:       out,
		Now:       func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) },
		Interrupt: make(chan os.Signal, 1),
	}, recorder, out
}

func TestRunFlow_Passes(t *testing.T) {
	// GIVEN
	fake := browsertest.NewFakeDriver(page)
	deps, recorder, out := createRunDeps(t, fake)

	// WHEN
	run, err := RunFlow(context.Background(), deps)

	// THEN
	require.NoError(t, err)
	assert.True(t, run.Passed)
	assert.Equal(t, models.RunStateAddedToCart, run.Reached)
	assert.True(t, run.IsTornDown())
	assert.Equal(t, 1, fake.Count("Quit()"))
	assert.Equal(t, "Navigate(http://store.test/)", fake.Calls()[0])

	require.Len(t, run.Screenshots, 3)
	for _, p := range run.Screenshots {
		assert.Contains(t, filepath.Base(p), "_2024_03_09_140507.png")
	}

	require.Len(t, recorder.Recorded, 1)
	assert.Same(t, run, recorder.Recorded[0])
	assert.Contains(t, out.String(), "PASS")
	assert.Contains(t, out.String(), run.ID)
}

func TestRunFlow_TearsDownOnceOnFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name        string
		setup       func(d *browsertest.FakeDriver)
		wantReached models.RunState
		wantErr     func(t *testing.T, err error)
	}{
		{
			name: "title never matches",
			setup: func(d *browsertest.FakeDriver) {
				d.WaitForTitleFunc = func(string, time.Duration) error { return browser.ErrTimeout }
			},
			wantReached: models.RunStateNotStarted,
			wantErr: func(t *testing.T, err error) {
				var startErr *browser.SessionStartError
				assert.ErrorAs(t, err, &startErr)
			},
		},
		{
			name:        "search assertion fails",
			setup:       func(d *browsertest.FakeDriver) { d.Source = "<html>nothing here</html>" },
			wantReached: models.RunStateBrowserReady,
			wantErr: func(t *testing.T, err error) {
				var assertErr *steps.AssertionError
				assert.ErrorAs(t, err, &assertErr)
			},
		},
		{
			name: "product link never clickable",
			setup: func(d *browsertest.FakeDriver) {
				d.WaitClickableFunc = func(l browser.Locator, _ time.Duration) error {
					if l.By == browser.ByPartialLinkText {
						return browser.ErrTimeout
					}
					return nil
				}
			},
			wantReached: models.RunStateSearched,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, browser.ErrTimeout)
			},
		},
		{
			name: "add-to-cart script fallback fails",
			setup: func(d *browsertest.FakeDriver) {
				d.ClickFunc = func(l browser.Locator) error {
					if l.Value == "add-to-cart-button" {
						return browser.ErrClickIntercepted
					}
					return nil
				}
				d.ScriptClickFunc = func(l browser.Locator) error {
					if l.Value == "add-to-cart-button" {
						return boom
					}
					return nil
				}
			},
			wantReached: models.RunStateSelected,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			fake := browsertest.NewFakeDriver(page)
			tt.setup(fake)
			deps, recorder, out := createRunDeps(t, fake)

			// WHEN
			run, err := RunFlow(context.Background(), deps)

			// THEN
			require.Error(t, err)
			tt.wantErr(t, err)
			require.NotNil(t, run)
			assert.False(t, run.Passed)
			assert.Equal(t, tt.wantReached, run.Reached)
			assert.Equal(t, err.Error(), run.Failure)
			assert.Equal(t, 1, fake.Count("Quit()"))
			assert.Len(t, recorder.Recorded, 1)
			assert.Contains(t, out.String(), "FAIL")
		})
	}
}

func TestRunFlow_DataFailureNeverLaunches(t *testing.T) {
	// GIVEN an unreadable workbook
	launched := false
	fake := browsertest.NewFakeDriver(page)
	deps, recorder, _ := createRunDeps(t, fake)
	deps.Source = &MockSource{
		LoadFunc: func(context.Context) (models.TestCase, error) {
			return models.TestCase{}, &dataset.FileAccessError{Path: "data.xlsx", Err: os.ErrNotExist}
		},
	}
	deps.Launcher = func(browser.Options) (browser.Driver, error) {
		launched = true
		return fake, nil
	}

	// WHEN
	run, err := RunFlow(context.Background(), deps)

	// THEN
	assert.Nil(t, run)
	var fileErr *dataset.FileAccessError
	assert.ErrorAs(t, err, &fileErr)
	assert.False(t, launched)
	assert.Empty(t, recorder.Recorded)
}

func TestRunFlow_LaunchFailure(t *testing.T) {
	fake := browsertest.NewFakeDriver(page)
	deps, recorder, _ := createRunDeps(t, fake)
	deps.Launcher = func(browser.Options) (browser.Driver, error) {
		return nil, errors.New("geckodriver not found")
	}

	run, err := RunFlow(context.Background(), deps)

	var startErr *browser.SessionStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "launch", startErr.Stage)
	assert.Equal(t, models.RunStateNotStarted, run.Reached)
	assert.True(t, run.IsTornDown())
	assert.Len(t, recorder.Recorded, 1)
}

func TestRunFlow_RecorderFailureIsNotFatal(t *testing.T) {
	fake := browsertest.NewFakeDriver(page)
	deps, recorder, _ := createRunDeps(t, fake)
	recorder.RecordFunc = func(*models.Run) error { return errors.New("connection refused") }

	run, err := RunFlow(context.Background(), deps)

	require.NoError(t, err)
	assert.True(t, run.Passed)
}

func TestRunFlow_InterruptClosesBrowser(t *testing.T) {
	// GIVEN a search that blocks until the browser goes away
	fake := browsertest.NewFakeDriver(page)
	quit := make(chan struct{})
	fake.QuitFunc = func() error {
		close(quit)
		return nil
	}
	fake.WaitPresentFunc = func(browser.Locator, time.Duration) error {
		select {
		case <-quit:
			return errors.New("browser has been closed")
		case <-time.After(5 * time.Second):
			return browser.ErrTimeout
		}
	}
	deps, _, _ := createRunDeps(t, fake)

	// WHEN an interrupt arrives mid-run
	go func() {
		time.Sleep(50 * time.Millisecond)
		deps.Interrupt <- syscall.SIGINT
	}()
	run, err := RunFlow(context.Background(), deps)

	// THEN the browser was quit once and the run failed
	require.Error(t, err)
	assert.False(t, run.Passed)
	assert.Equal(t, 1, fake.Count("Quit()"))
}
