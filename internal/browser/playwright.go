package browser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/qanai/shopflow/internal/config"
)

// navigationTimeout bounds page loads; the title wait that follows has its own bound
const navigationTimeout = 30 * time.Second

// PlaywrightDriver drives a browser through playwright-go
type PlaywrightDriver struct {
	pw           *playwright.Playwright
	browser      playwright.Browser
	page         playwright.Page
	clickTimeout time.Duration
}

func launchPlaywright(opts Options) (Driver, error) {
	pw, err := playwright.Run(&playwright.RunOptions{DriverDirectory: opts.DriverPath})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		browserType = pw.Chromium
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Firefox
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.BrowserPath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.BrowserPath)
	}

	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Browser, err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	d := WrapPage(page, opts.ClickTimeout)
	d.pw = pw
	d.browser = browser
	return d, nil
}

// WrapPage builds a driver around a page owned by the caller; Quit then only
// closes the page
func WrapPage(page playwright.Page, clickTimeout time.Duration) *PlaywrightDriver {
	if clickTimeout <= 0 {
		clickTimeout = config.DefaultTimeouts().Click
	}
	page.SetDefaultTimeout(ms(clickTimeout))
	return &PlaywrightDriver{page: page, clickTimeout: clickTimeout}
}

func (d *PlaywrightDriver) Navigate(url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(ms(navigationTimeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func (d *PlaywrightDriver) Maximize(v config.Viewport) error {
	return d.page.SetViewportSize(v.Width, v.Height)
}

func (d *PlaywrightDriver) WaitForTitle(substr string, timeout time.Duration) error {
	return Poll(timeout, 250*time.Millisecond, func() (bool, error) {
		title, err := d.page.Title()
		if err != nil {
			// the title is unreadable while a navigation is in flight
			return false, nil
		}
		return strings.Contains(title, substr), nil
	})
}

func (d *PlaywrightDriver) WaitPresent(l Locator, timeout time.Duration) error {
	err := d.locator(l).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(ms(timeout)),
	})
	return classifyPlaywrightWait(err, l)
}

func (d *PlaywrightDriver) WaitClickable(l Locator, timeout time.Duration) error {
	start := time.Now()
	loc := d.locator(l)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil {
		return classifyPlaywrightWait(err, l)
	}

	remaining := timeout - time.Since(start)
	return Poll(remaining, 100*time.Millisecond, func() (bool, error) {
		enabled, err := loc.IsEnabled()
		if err != nil {
			return false, classifyPlaywrightWait(err, l)
		}
		return enabled, nil
	})
}

func (d *PlaywrightDriver) Clear(l Locator) error {
	return classifyPlaywrightAction(d.locator(l).Clear(), l)
}

func (d *PlaywrightDriver) Type(l Locator, text string) error {
	return classifyPlaywrightAction(d.locator(l).Fill(text), l)
}

func (d *PlaywrightDriver) Click(l Locator) error {
	err := d.locator(l).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(d.clickTimeout)),
	})
	return classifyPlaywrightAction(err, l)
}

func (d *PlaywrightDriver) ScriptClick(l Locator) error {
	_, err := d.locator(l).Evaluate("el => el.click()", nil)
	return classifyPlaywrightAction(err, l)
}

func (d *PlaywrightDriver) ScrollIntoView(l Locator) error {
	_, err := d.locator(l).Evaluate("el => el.scrollIntoView(true)", nil)
	return classifyPlaywrightAction(err, l)
}

func (d *PlaywrightDriver) PageSource() (string, error) {
	return d.page.Content()
}

func (d *PlaywrightDriver) Screenshot() ([]byte, error) {
	return d.page.Screenshot()
}

// Quit closes the page, and the browser and playwright when this driver
// launched them
func (d *PlaywrightDriver) Quit() error {
	var errs []error
	if d.browser != nil {
		errs = append(errs, d.browser.Close())
	} else {
		errs = append(errs, d.page.Close())
	}
	if d.pw != nil {
		errs = append(errs, d.pw.Stop())
	}
	return errors.Join(errs...)
}

func (d *PlaywrightDriver) locator(l Locator) playwright.Locator {
	return d.page.Locator(PlaywrightSelector(l)).First()
}

// PlaywrightSelector renders a locator in playwright's selector syntax
func PlaywrightSelector(l Locator) string {
	value := strconv.Quote(l.Value)
	switch l.By {
	case ByPartialLinkText:
		return "a:has-text(" + value + ")"
	case ByImageAlt:
		return "img[alt=" + value + "]"
	default:
		return "[id=" + value + "]"
	}
}

// classifyPlaywrightWait maps errors from explicit waits; these are timeouts
// unless something else went wrong
func classifyPlaywrightWait(err error, l Locator) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w waiting for %s: %v", ErrTimeout, l, err)
	}
	return fmt.Errorf("waiting for %s: %w", l, err)
}

// classifyPlaywrightAction maps actionability failures. Playwright retries an
// obstructed click until its timeout, so the reason is only in the message.
func classifyPlaywrightAction(err error, l Locator) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %s: %v", ErrClickIntercepted, l, err)
	case strings.Contains(msg, "element is not visible"),
		strings.Contains(msg, "element is not enabled"),
		strings.Contains(msg, "element is not editable"),
		strings.Contains(msg, "outside of the viewport"):
		return fmt.Errorf("%w: %s: %v", ErrNotInteractable, l, err)
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, l, err)
	}
	return fmt.Errorf("%s: %w", l, err)
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
