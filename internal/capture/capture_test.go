package capture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockShooter returns canned screenshot bytes
type MockShooter struct {
	ScreenshotFunc func() ([]byte, error)
}

func (m *MockShooter) Screenshot() ([]byte, error) {
	if m.ScreenshotFunc != nil {
		return m.ScreenshotFunc()
	}
	return []byte("\x89PNG fake"), nil
}

func TestPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/shots", "searchItem_2024_11_03_140509.png"),
		Path("/shots", StepSearch, "2024_11_03_140509"))
}

func TestCapture_WritesFile(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	path := Path(dir, StepAddToCart, "2024_11_03_140509")

	// WHEN
	err := Capture(&MockShooter{}, path)

	// THEN
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), data)
}

func TestCapture_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	err := Capture(&MockShooter{ScreenshotFunc: func() ([]byte, error) { return []byte("new"), nil }}, path)

	require.NoError(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(data))
}

func TestCapture_Errors(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))

	tests := []struct {
		name    string
		shooter *MockShooter
		path    string
	}{
		{
			name:    "missing directory",
			shooter: &MockShooter{},
			path:    filepath.Join(t.TempDir(), "missing", "shot.png"),
		},
		{
			name:    "parent is a file",
			shooter: &MockShooter{},
			path:    filepath.Join(notADir, "shot.png"),
		},
		{
			name: "browser refused",
			shooter: &MockShooter{ScreenshotFunc: func() ([]byte, error) {
				return nil, errors.New("target closed")
			}},
			path: filepath.Join(t.TempDir(), "shot.png"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Capture(tt.shooter, tt.path)

			var ioErr *IOError
			require.True(t, errors.As(err, &ioErr), "got %v", err)
			assert.Equal(t, tt.path, ioErr.Path)
			_, statErr := os.Stat(tt.path)
			assert.Error(t, statErr)
		})
	}
}
