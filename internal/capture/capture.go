// Package capture writes browser screenshots to disk.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
)

// Step names used in screenshot file names
const (
	StepSearch    = "searchItem"
	StepSelect    = "selectItem"
	StepAddToCart = "addToCart"
)

// Shooter captures the current viewport as PNG bytes
type Shooter interface {
	Screenshot() ([]byte, error)
}

// IOError means the screenshot could not be taken or written
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to save screenshot %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Path returns <dir>/<step>_<timestamp>.png
func Path(dir, step, timestamp string) string {
	return filepath.Join(dir, step+"_"+timestamp+".png")
}

// Capture takes a screenshot and writes it to path, replacing any existing
// file. The destination directory must already exist.
func Capture(s Shooter, path string) error {
	data, err := s.Screenshot()
	if err != nil {
		return &IOError{Path: path, Err: fmt.Errorf("failed to take screenshot: %w", err)}
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Path: path, Err: fmt.Errorf("%s is not a directory", dir)}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
