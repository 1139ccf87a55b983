package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Supported automation drivers
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverChromedp   = "chromedp"
)

// Defaults for the target site and the data sheet
const (
	DefaultTargetURL     = "http://www.amazon.com/"
	DefaultTitleContains = "Amazon.com. Spend less. Smile more."
	DefaultSheet         = "Sheet1"
	DefaultRow           = 1
	DefaultBrowser       = "firefox"
)

// browsers lists the browsers each driver can launch
var browsers = map[string][]string{
	DriverPlaywright: {"firefox", "chromium", "webkit"},
	DriverSelenium:   {"firefox", "chrome"},
	DriverChromedp:   {"chrome"},
}

// Timeouts holds the bounded waits used by the flow
type Timeouts struct {
	Title  time.Duration
	Search time.Duration
	Select time.Duration
	Cart   time.Duration
	// Click bounds a single native click attempt
	Click time.Duration
}

// DefaultTimeouts returns the waits the flow was tuned with
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Title:  15 * time.Second,
		Search: 20 * time.Second,
		Select: 20 * time.Second,
		Cart:   10 * time.Second,
		Click:  5 * time.Second,
	}
}

// Viewport is the window size used when maximizing
type Viewport struct {
	Width  int
	Height int
}

// RunConfig holds everything a run needs, resolved before the browser starts
type RunConfig struct {
	DataFile          string
	Sheet             string
	Row               int
	GoogleCredentials string

	Driver      string
	Browser     string
	DriverPath  string
	BrowserPath string
	Headless    bool
	Viewport    Viewport

	TargetURL     string
	TitleContains string
	LocatorsFile  string
	ScreenshotDir string

	Timeouts Timeouts
}

// LoadRunConfig loads run configuration from environment variables
func LoadRunConfig(getenv func(string) string) (*RunConfig, error) {
	config := &RunConfig{
		DataFile:          getenv("SHOPFLOW_DATA_FILE"),
		Sheet:             valueOr(getenv("SHOPFLOW_SHEET"), DefaultSheet),
		Row:               DefaultRow,
		GoogleCredentials: getenv("SHOPFLOW_GOOGLE_CREDENTIALS"),
		Driver:            valueOr(getenv("SHOPFLOW_DRIVER"), DriverPlaywright),
		Browser:           getenv("SHOPFLOW_BROWSER"),
		DriverPath:        getenv("SHOPFLOW_DRIVER_PATH"),
		BrowserPath:       getenv("SHOPFLOW_BROWSER_PATH"),
		Viewport:          Viewport{Width: 1920, Height: 1080},
		TargetURL:         valueOr(getenv("SHOPFLOW_TARGET_URL"), DefaultTargetURL),
		TitleContains:     valueOr(getenv("SHOPFLOW_TITLE"), DefaultTitleContains),
		LocatorsFile:      getenv("SHOPFLOW_LOCATORS"),
		ScreenshotDir:     getenv("SHOPFLOW_SCREENSHOT_DIR"),
		Timeouts:          DefaultTimeouts(),
	}

	if row := getenv("SHOPFLOW_ROW"); row != "" {
		n, err := strconv.Atoi(row)
		if err != nil {
			return nil, fmt.Errorf("SHOPFLOW_ROW must be an integer: %w", err)
		}
		config.Row = n
	}

	if headless := getenv("SHOPFLOW_HEADLESS"); headless != "" {
		b, err := strconv.ParseBool(headless)
		if err != nil {
			return nil, fmt.Errorf("SHOPFLOW_HEADLESS must be a boolean: %w", err)
		}
		config.Headless = b
	}

	if viewport := getenv("SHOPFLOW_VIEWPORT"); viewport != "" {
		v, err := ParseViewport(viewport)
		if err != nil {
			return nil, err
		}
		config.Viewport = v
	}

	if config.Browser == "" {
		config.Browser = DefaultBrowserFor(config.Driver)
	}

	return config, nil
}

// Validate checks required fields and cross-field constraints
func (c *RunConfig) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("SHOPFLOW_DATA_FILE is required")
	}
	if c.ScreenshotDir == "" {
		return fmt.Errorf("SHOPFLOW_SCREENSHOT_DIR is required")
	}
	if c.Sheet == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}
	if c.Row < 0 {
		return fmt.Errorf("row index cannot be negative: %d", c.Row)
	}

	supported, ok := browsers[c.Driver]
	if !ok {
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if !contains(supported, c.Browser) {
		return fmt.Errorf("driver %s cannot launch browser %q (supported: %s)",
			c.Driver, c.Browser, strings.Join(supported, ", "))
	}
	if c.Driver == DriverSelenium && c.DriverPath == "" {
		return fmt.Errorf("SHOPFLOW_DRIVER_PATH is required for the selenium driver")
	}

	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target URL must be absolute: %q", c.TargetURL)
	}
	if c.TitleContains == "" {
		return fmt.Errorf("expected title cannot be empty")
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}

	t := c.Timeouts
	for name, d := range map[string]time.Duration{
		"title": t.Title, "search": t.Search, "select": t.Select, "cart": t.Cart, "click": t.Click,
	} {
		if d <= 0 {
			return fmt.Errorf("%s timeout must be positive", name)
		}
	}

	return nil
}

// UsesGoogleSheets reports whether the data file points at a Google spreadsheet
func (c *RunConfig) UsesGoogleSheets() bool {
	return strings.HasPrefix(c.DataFile, GoogleSheetsScheme)
}

// GoogleSheetsScheme prefixes a spreadsheet ID in SHOPFLOW_DATA_FILE
const GoogleSheetsScheme = "gsheet://"

// ParseViewport parses a WIDTHxHEIGHT string
func ParseViewport(s string) (Viewport, error) {
	var v Viewport
	if _, err := fmt.Sscanf(s, "%dx%d", &v.Width, &v.Height); err != nil {
		return Viewport{}, fmt.Errorf("viewport must look like 1920x1080: %w", err)
	}
	return v, nil
}

// DefaultBrowserFor returns the browser a driver launches when none is configured
func DefaultBrowserFor(driver string) string {
	if driver == DriverChromedp {
		return "chrome"
	}
	return DefaultBrowser
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
