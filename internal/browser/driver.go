// Package browser wraps the browser automation libraries behind one small
// Driver interface and owns the lifetime of a browser session.
package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qanai/shopflow/internal/capture"
	"github.com/qanai/shopflow/internal/config"
)

// Errors every driver maps its native failures onto
var (
	ErrTimeout          = errors.New("timed out")
	ErrNoSuchElement    = errors.New("no such element")
	ErrClickIntercepted = errors.New("element click intercepted")
	ErrNotInteractable  = errors.New("element not interactable")
)

// Strategy is how a Locator finds its element
type Strategy int

// Locator strategies
const (
	ByID Strategy = iota
	ByPartialLinkText
	ByImageAlt
)

// Locator identifies an element on the page
type Locator struct {
	By    Strategy
	Value string
}

// ID locates an element by its id attribute
func ID(id string) Locator {
	return Locator{By: ByID, Value: id}
}

// PartialLinkText locates a link whose visible text contains text
func PartialLinkText(text string) Locator {
	return Locator{By: ByPartialLinkText, Value: text}
}

// ImageAlt locates an image whose alt text equals alt
func ImageAlt(alt string) Locator {
	return Locator{By: ByImageAlt, Value: alt}
}

func (l Locator) String() string {
	switch l.By {
	case ByID:
		return fmt.Sprintf("id=%s", l.Value)
	case ByPartialLinkText:
		return fmt.Sprintf("partial link text=%s", l.Value)
	case ByImageAlt:
		return fmt.Sprintf("img alt=%s", l.Value)
	}
	return fmt.Sprintf("unknown=%s", l.Value)
}

// XPath renders the locator as an XPath expression
func (l Locator) XPath() string {
	lit := xpathLiteral(l.Value)
	switch l.By {
	case ByPartialLinkText:
		return fmt.Sprintf("//a[contains(normalize-space(.), %s)]", lit)
	case ByImageAlt:
		return fmt.Sprintf("//img[@alt=%s]", lit)
	default:
		return fmt.Sprintf("//*[@id=%s]", lit)
	}
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// Driver is a live browser session the flow steps operate on
type Driver interface {
	capture.Shooter

	Navigate(url string) error
	Maximize(v config.Viewport) error
	WaitForTitle(substr string, timeout time.Duration) error

	// WaitPresent waits until the element is attached to the DOM
	WaitPresent(l Locator, timeout time.Duration) error
	// WaitClickable waits until the element is visible and enabled
	WaitClickable(l Locator, timeout time.Duration) error

	Clear(l Locator) error
	Type(l Locator, text string) error
	// Click performs a native click and reports ErrClickIntercepted when
	// another element receives it
	Click(l Locator) error
	// ScriptClick calls element.click() in the page, bypassing hit testing
	ScriptClick(l Locator) error
	ScrollIntoView(l Locator) error

	PageSource() (string, error)
	Quit() error
}

// Options selects and configures the automation driver
type Options struct {
	Driver      string
	Browser     string
	DriverPath  string
	BrowserPath string
	Headless    bool
	// ClickTimeout bounds single element actions
	ClickTimeout time.Duration
}

// OptionsFromConfig builds driver options from the run configuration
func OptionsFromConfig(cfg *config.RunConfig) Options {
	return Options{
		Driver:       cfg.Driver,
		Browser:      cfg.Browser,
		DriverPath:   cfg.DriverPath,
		BrowserPath:  cfg.BrowserPath,
		Headless:     cfg.Headless,
		ClickTimeout: cfg.Timeouts.Click,
	}
}

// Launcher starts a browser and returns a driver for it
type Launcher func(opts Options) (Driver, error)

// Launch starts the driver named in opts
func Launch(opts Options) (Driver, error) {
	switch opts.Driver {
	case config.DriverPlaywright, "":
		return launchPlaywright(opts)
	case config.DriverSelenium:
		return launchSelenium(opts)
	case config.DriverChromedp:
		return launchChromedp(opts)
	}
	return nil, fmt.Errorf("unknown driver %q", opts.Driver)
}

// Poll checks cond every interval until it holds or timeout elapses. An error
// from cond stops polling and is returned as is.
func Poll(timeout, interval time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		time.Sleep(interval)
	}
}
