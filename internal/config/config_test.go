package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"SHOPFLOW_DATA_FILE":      "/data/data.xlsx",
		"SHOPFLOW_SCREENSHOT_DIR": "/data/screenshots",
	}
}

func TestLoadRunConfig_Defaults(t *testing.T) {
	// GIVEN
	env := validEnv()

	// WHEN
	cfg, err := LoadRunConfig(envFrom(env))

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "/data/data.xlsx", cfg.DataFile)
	assert.Equal(t, DefaultSheet, cfg.Sheet)
	assert.Equal(t, DefaultRow, cfg.Row)
	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, DefaultTargetURL, cfg.TargetURL)
	assert.Equal(t, DefaultTitleContains, cfg.TitleContains)
	assert.Equal(t, Viewport{Width: 1920, Height: 1080}, cfg.Viewport)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Title)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Search)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Select)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Cart)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRunConfig_Overrides(t *testing.T) {
	env := validEnv()
	env["SHOPFLOW_DRIVER"] = DriverChromedp
	env["SHOPFLOW_ROW"] = "3"
	env["SHOPFLOW_HEADLESS"] = "true"
	env["SHOPFLOW_VIEWPORT"] = "1280x720"
	env["SHOPFLOW_TARGET_URL"] = "http://localhost:8080/"

	cfg, err := LoadRunConfig(envFrom(env))

	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.Browser)
	assert.Equal(t, 3, cfg.Row)
	assert.True(t, cfg.Headless)
	assert.Equal(t, Viewport{Width: 1280, Height: 720}, cfg.Viewport)
	assert.Equal(t, "http://localhost:8080/", cfg.TargetURL)
}

func TestLoadRunConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "row not a number", key: "SHOPFLOW_ROW", val: "second"},
		{name: "headless not a bool", key: "SHOPFLOW_HEADLESS", val: "sometimes"},
		{name: "bad viewport", key: "SHOPFLOW_VIEWPORT", val: "wide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			env[tt.key] = tt.val

			cfg, err := LoadRunConfig(envFrom(env))

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RunConfig)
		wantErr string
	}{
		{
			name:    "missing data file",
			mutate:  func(c *RunConfig) { c.DataFile = "" },
			wantErr: "SHOPFLOW_DATA_FILE is required",
		},
		{
			name:    "missing screenshot dir",
			mutate:  func(c *RunConfig) { c.ScreenshotDir = "" },
			wantErr: "SHOPFLOW_SCREENSHOT_DIR is required",
		},
		{
			name:    "negative row",
			mutate:  func(c *RunConfig) { c.Row = -1 },
			wantErr: "row index cannot be negative",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *RunConfig) { c.Driver = "puppeteer" },
			wantErr: "unknown driver",
		},
		{
			name:    "browser not supported by driver",
			mutate:  func(c *RunConfig) { c.Browser = "webkit"; c.Driver = DriverChromedp },
			wantErr: "cannot launch browser",
		},
		{
			name: "selenium without driver path",
			mutate: func(c *RunConfig) {
				c.Driver = DriverSelenium
				c.Browser = "firefox"
			},
			wantErr: "SHOPFLOW_DRIVER_PATH is required",
		},
		{
			name:    "relative target url",
			mutate:  func(c *RunConfig) { c.TargetURL = "/search" },
			wantErr: "target URL must be absolute",
		},
		{
			name:    "empty title",
			mutate:  func(c *RunConfig) { c.TitleContains = "" },
			wantErr: "expected title cannot be empty",
		},
		{
			name:    "zero viewport",
			mutate:  func(c *RunConfig) { c.Viewport = Viewport{} },
			wantErr: "viewport must be positive",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *RunConfig) { c.Timeouts.Cart = 0 },
			wantErr: "cart timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadRunConfig(envFrom(validEnv()))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunConfig_UsesGoogleSheets(t *testing.T) {
	cfg := &RunConfig{DataFile: "gsheet://1AbC"}
	assert.True(t, cfg.UsesGoogleSheets())

	cfg.DataFile = "/tmp/data.xlsx"
	assert.False(t, cfg.UsesGoogleSheets())
}

func TestLoadLocators(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		locators, err := LoadLocators("")

		require.NoError(t, err)
		assert.Equal(t, DefaultLocators(), locators)
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		// GIVEN
		path := filepath.Join(t.TempDir(), "locators.yaml")
		require.NoError(t, os.WriteFile(path, []byte("add_to_cart: buy-button\n"), 0o644))

		// WHEN
		locators, err := LoadLocators(path)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "buy-button", locators.AddToCart)
		assert.Equal(t, "twotabsearchtextbox", locators.SearchBox)
		assert.Equal(t, "attachSiNoCoverage", locators.DeclineWarranty)
	})

	t.Run("blanked locator is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "locators.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search_box: \"\"\n"), 0o644))

		_, err := LoadLocators(path)

		assert.ErrorContains(t, err, "search_box")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLocators(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.ErrorContains(t, err, "failed to read locators file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "locators.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search_box: [unclosed\n"), 0o644))

		_, err := LoadLocators(path)

		assert.ErrorContains(t, err, "failed to parse locators file")
	})
}

func TestLoadPostgresConfig(t *testing.T) {
	t.Run("database url wins", func(t *testing.T) {
		cfg, err := LoadPostgresConfig(envFrom(map[string]string{
			"DATABASE_URL":      "postgres://u:p@db/runs",
			"POSTGRES_HOSTNAME": "ignored",
		}))

		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db/runs", cfg.ConnectionString())
	})

	t.Run("disabled without host", func(t *testing.T) {
		cfg, err := LoadPostgresConfig(envFrom(map[string]string{}))

		assert.ErrorIs(t, err, ErrHistoryDisabled)
		assert.Nil(t, cfg)
	})

	t.Run("host without user", func(t *testing.T) {
		_, err := LoadPostgresConfig(envFrom(map[string]string{"POSTGRES_HOSTNAME": "db"}))

		assert.ErrorContains(t, err, "POSTGRES_USER is required")
	})

	t.Run("full settings", func(t *testing.T) {
		cfg, err := LoadPostgresConfig(envFrom(map[string]string{
			"POSTGRES_HOSTNAME": "db",
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "secret",
			"POSTGRES_DB":       "runs",
		}))

		require.NoError(t, err)
		assert.Equal(t, "host=db user=shop password=secret dbname=runs sslmode=disable", cfg.ConnectionString())
	})
}

func TestLoadStoreConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_TITLE", "")
	t.Setenv("STORE_CART_OVERLAY", "true")
	t.Setenv("STORE_WARRANTY_DIALOG", "false")

	cfg := LoadStoreConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultStoreTitle, cfg.Title)
	assert.Contains(t, cfg.Title, DefaultTitleContains)
	assert.True(t, cfg.CartOverlay)
	assert.False(t, cfg.WarrantyDialog)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestDefaultBrowserFor(t *testing.T) {
	assert.Equal(t, "firefox", DefaultBrowserFor(DriverPlaywright))
	assert.Equal(t, "firefox", DefaultBrowserFor(DriverSelenium))
	assert.Equal(t, "chrome", DefaultBrowserFor(DriverChromedp))
}
