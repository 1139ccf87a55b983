// Package steps implements the search, select and add-to-cart steps of a run.
// Each step works on a RunContext owned by the caller; there is no package
// level state.
package steps

import (
	"errors"
	"strings"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/capture"
	"github.com/qanai/shopflow/internal/config"
	"github.com/qanai/shopflow/internal/models"
	"github.com/rs/zerolog"
)

// AssertionMessage is reported when the search results show none of the
// expected values
const AssertionMessage = "Item not found or price/color does not match expectations."

// AssertionError is the fatal search assertion failure
type AssertionError struct {
	Expected []string
}

func (e *AssertionError) Error() string {
	return AssertionMessage
}

// Outcome is the result of looking up an optional element
type Outcome int

// Lookup outcomes
const (
	Found Outcome = iota
	NotFound
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case TimedOut:
		return "timed out"
	}
	return "unknown"
}

// outcomeOf maps a wait error onto an Outcome. Errors other than a missing
// element or a timeout are returned unchanged.
func outcomeOf(err error) (Outcome, error) {
	switch {
	case err == nil:
		return Found, nil
	case errors.Is(err, browser.ErrTimeout):
		return TimedOut, nil
	case errors.Is(err, browser.ErrNoSuchElement):
		return NotFound, nil
	}
	return NotFound, err
}

// RunContext carries everything a step needs for one run
type RunContext struct {
	Driver        browser.Driver
	TestCase      models.TestCase
	Locators      config.Locators
	Timeouts      config.Timeouts
	ScreenshotDir string
	Run           *models.Run
	Logger        zerolog.Logger
}

// snapshot saves a screenshot for step. Failures are logged only.
func (rc *RunContext) snapshot(step string) {
	path := capture.Path(rc.ScreenshotDir, step, rc.Run.Timestamp)
	if err := capture.Capture(rc.Driver, path); err != nil {
		rc.Logger.Error().Err(err).Str("step", step).Msg("Screenshot failed")
		return
	}
	rc.Run.AddScreenshot(path)
	rc.Logger.Info().Str("step", step).Str("path", path).Msg("Screenshot saved")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
