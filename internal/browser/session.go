package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/qanai/shopflow/internal/config"
	"github.com/rs/zerolog/log"
)

// SessionStartError means the browser could not be launched or never reached
// the expected start page
type SessionStartError struct {
	Stage string
	Err   error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("browser session failed to start (%s): %v", e.Stage, e.Err)
}

func (e *SessionStartError) Unwrap() error {
	return e.Err
}

// Session owns one launched driver and releases it exactly once
type Session struct {
	driver   Driver
	once     sync.Once
	released bool
	closeErr error
	mu       sync.Mutex
}

// Start launches a driver. The returned session must be closed by the caller.
func Start(launch Launcher, opts Options) (*Session, error) {
	driver, err := launch(opts)
	if err != nil {
		return nil, &SessionStartError{Stage: "launch", Err: err}
	}
	log.Debug().Str("driver", opts.Driver).Str("browser", opts.Browser).Msg("Browser launched")
	return &Session{driver: driver}, nil
}

// Prepare opens the start page, maximizes the window and waits for the title
func (s *Session) Prepare(url, title string, viewport config.Viewport, timeout time.Duration) error {
	if err := s.driver.Navigate(url); err != nil {
		return &SessionStartError{Stage: "navigate", Err: err}
	}
	if err := s.driver.Maximize(viewport); err != nil {
		return &SessionStartError{Stage: "maximize", Err: err}
	}
	if err := s.driver.WaitForTitle(title, timeout); err != nil {
		return &SessionStartError{Stage: "title", Err: err}
	}
	return nil
}

// Driver returns the live driver
func (s *Session) Driver() Driver {
	return s.driver
}

// Close quits the browser. Only the first call does anything; later calls
// return the first result.
func (s *Session) Close() error {
	s.once.Do(func() {
		err := s.driver.Quit()
		s.mu.Lock()
		s.released = true
		s.closeErr = err
		s.mu.Unlock()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

// Released reports whether Close has run
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
