package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunState represents the progress of a run through the purchase flow
type RunState string

// Run states
const (
	RunStateNotStarted   RunState = "not_started"
	RunStateBrowserReady RunState = "browser_ready"
	RunStateSearched     RunState = "searched"
	RunStateSelected     RunState = "selected"
	RunStateAddedToCart  RunState = "added_to_cart"
	RunStateTornDown     RunState = "torn_down"
)

// TimestampLayout formats the run timestamp as yyyy_MM_dd_HHmmss
const TimestampLayout = "2006_01_02_150405"

// next holds the only forward transition allowed from each state
var next = map[RunState]RunState{
	RunStateNotStarted:   RunStateBrowserReady,
	RunStateBrowserReady: RunStateSearched,
	RunStateSearched:     RunStateSelected,
	RunStateSelected:     RunStateAddedToCart,
	RunStateAddedToCart:  RunStateTornDown,
}

// Run is one execution of the search, select and add-to-cart flow
type Run struct {
	ID          string
	Timestamp   string
	StartedAt   time.Time
	FinishedAt  time.Time
	State       RunState
	Reached     RunState
	Passed      bool
	Failure     string
	TestCase    TestCase
	Screenshots []string
}

// Domain errors
var (
	ErrInvalidStateTransition = errors.New("invalid run state transition")
	ErrRunAlreadyTornDown     = errors.New("run is already torn down")
)

// NewRun creates a run for the given test case; the timestamp is fixed here
// and shared by every screenshot of the run
func NewRun(tc TestCase, now time.Time) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Timestamp: now.Format(TimestampLayout),
		StartedAt: now,
		State:     RunStateNotStarted,
		Reached:   RunStateNotStarted,
		TestCase:  tc,
	}
}

// Advance moves the run to the given state
func (r *Run) Advance(to RunState) error {
	if r.State == RunStateTornDown {
		return ErrRunAlreadyTornDown
	}
	if to == RunStateTornDown {
		return r.TearDown(nil)
	}
	if next[r.State] != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, r.State, to)
	}
	r.State = to
	r.Reached = to
	return nil
}

// TearDown finishes the run. A nil cause marks it passed only if the whole
// flow was completed.
func (r *Run) TearDown(cause error) error {
	if r.State == RunStateTornDown {
		return ErrRunAlreadyTornDown
	}
	r.Reached = r.State
	r.State = RunStateTornDown
	r.FinishedAt = time.Now()

	switch {
	case cause != nil:
		r.Passed = false
		r.Failure = cause.Error()
	case r.Reached != RunStateAddedToCart:
		r.Passed = false
		r.Failure = fmt.Sprintf("run stopped at %s", r.Reached)
	default:
		r.Passed = true
	}
	return nil
}

// AddScreenshot records a screenshot written during the run
func (r *Run) AddScreenshot(path string) {
	r.Screenshots = append(r.Screenshots, path)
}

// IsTornDown returns true once teardown has run
func (r *Run) IsTornDown() bool {
	return r.State == RunStateTornDown
}

// Duration returns how long the run took, or zero while it is still running
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
