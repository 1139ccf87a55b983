package browser_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/browser/browsertest"
	"github.com/qanai/shopflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewport = config.Viewport{Width: 1920, Height: 1080}

func TestStart_LaunchFailure(t *testing.T) {
	// GIVEN a launcher that cannot start a browser
	boom := errors.New("geckodriver not found")
	launch := func(browser.Options) (browser.Driver, error) { return nil, boom }

	// WHEN
	s, err := browser.Start(launch, browser.Options{})

	// THEN
	assert.Nil(t, s)
	var startErr *browser.SessionStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "launch", startErr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestSession_Prepare(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		setup     func(d *browsertest.FakeDriver)
		wantStage string
	}{
		{
			name:  "ready",
			setup: func(d *browsertest.FakeDriver) {},
		},
		{
			name: "navigation fails",
			setup: func(d *browsertest.FakeDriver) {
				d.NavigateFunc = func(string) error { return boom }
			},
			wantStage: "navigate",
		},
		{
			name: "maximize fails",
			setup: func(d *browsertest.FakeDriver) {
				d.MaximizeFunc = func(config.Viewport) error { return boom }
			},
			wantStage: "maximize",
		},
		{
			name: "title never matches",
			setup: func(d *browsertest.FakeDriver) {
				d.WaitForTitleFunc = func(string, time.Duration) error { return browser.ErrTimeout }
			},
			wantStage: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			fake := browsertest.NewFakeDriver("")
			tt.setup(fake)
			s, err := browser.Start(fake.Launcher(), browser.Options{})
			require.NoError(t, err)

			// WHEN
			err = s.Prepare("http://store.test/", "Demo Store", viewport, time.Second)

			// THEN
			if tt.wantStage == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{
					"Navigate(http://store.test/)",
					"Maximize(1920x1080)",
					"WaitForTitle(Demo Store)",
				}, fake.Calls())
				return
			}
			var startErr *browser.SessionStartError
			require.ErrorAs(t, err, &startErr)
			assert.Equal(t, tt.wantStage, startErr.Stage)
		})
	}
}

func TestSession_CloseOnce(t *testing.T) {
	// GIVEN
	quitErr := errors.New("browser already gone")
	fake := browsertest.NewFakeDriver("")
	fake.QuitFunc = func() error { return quitErr }
	s, err := browser.Start(fake.Launcher(), browser.Options{})
	require.NoError(t, err)
	assert.False(t, s.Released())

	// WHEN closed concurrently from several places
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.ErrorIs(t, s.Close(), quitErr)
		}()
	}
	wg.Wait()

	// THEN the browser is quit exactly once
	assert.True(t, s.Released())
	assert.Equal(t, 1, fake.Count("Quit()"))
	assert.ErrorIs(t, s.Close(), quitErr)
	assert.Equal(t, 1, fake.Count("Quit()"))
}
