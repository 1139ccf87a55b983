// Package browsertest provides a scriptable in-memory browser.Driver for tests.
package browsertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/config"
)

// FakeDriver records every call. Each behaviour can be overridden through the
// func fields; by default every operation succeeds.
type FakeDriver struct {
	NavigateFunc       func(url string) error
	MaximizeFunc       func(v config.Viewport) error
	WaitForTitleFunc   func(substr string, timeout time.Duration) error
	WaitPresentFunc    func(l browser.Locator, timeout time.Duration) error
	WaitClickableFunc  func(l browser.Locator, timeout time.Duration) error
	ClearFunc          func(l browser.Locator) error
	TypeFunc           func(l browser.Locator, text string) error
	ClickFunc          func(l browser.Locator) error
	ScriptClickFunc    func(l browser.Locator) error
	ScrollIntoViewFunc func(l browser.Locator) error
	PageSourceFunc     func() (string, error)
	ScreenshotFunc     func() ([]byte, error)
	QuitFunc           func() error

	// Source is returned by PageSource when PageSourceFunc is nil
	Source string

	mu    sync.Mutex
	calls []string
}

// NewFakeDriver returns a driver whose page source is source
func NewFakeDriver(source string) *FakeDriver {
	return &FakeDriver{Source: source}
}

// Launcher returns a browser.Launcher that hands out this driver
func (f *FakeDriver) Launcher() browser.Launcher {
	return func(browser.Options) (browser.Driver, error) {
		return f, nil
	}
}

// Calls returns the recorded calls, e.g. "Click(id=add-to-cart-button)"
func (f *FakeDriver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times call was recorded
func (f *FakeDriver) Count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *FakeDriver) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *FakeDriver) Navigate(url string) error {
	f.record("Navigate(%s)", url)
	if f.NavigateFunc != nil {
		return f.NavigateFunc(url)
	}
	return nil
}

func (f *FakeDriver) Maximize(v config.Viewport) error {
	f.record("Maximize(%dx%d)", v.Width, v.Height)
	if f.MaximizeFunc != nil {
		return f.MaximizeFunc(v)
	}
	return nil
}

func (f *FakeDriver) WaitForTitle(substr string, timeout time.Duration) error {
	f.record("WaitForTitle(%s)", substr)
	if f.WaitForTitleFunc != nil {
		return f.WaitForTitleFunc(substr, timeout)
	}
	return nil
}

func (f *FakeDriver) WaitPresent(l browser.Locator, timeout time.Duration) error {
	f.record("WaitPresent(%s)", l)
	if f.WaitPresentFunc != nil {
		return f.WaitPresentFunc(l, timeout)
	}
	return nil
}

func (f *FakeDriver) WaitClickable(l browser.Locator, timeout time.Duration) error {
	f.record("WaitClickable(%s)", l)
	if f.WaitClickableFunc != nil {
		return f.WaitClickableFunc(l, timeout)
	}
	return nil
}

func (f *FakeDriver) Clear(l browser.Locator) error {
	f.record("Clear(%s)", l)
	if f.ClearFunc != nil {
		return f.ClearFunc(l)
	}
	return nil
}

func (f *FakeDriver) Type(l browser.Locator, text string) error {
	f.record("Type(%s, %s)", l, text)
	if f.TypeFunc != nil {
		return f.TypeFunc(l, text)
	}
	return nil
}

func (f *FakeDriver) Click(l browser.Locator) error {
	f.record("Click(%s)", l)
	if f.ClickFunc != nil {
		return f.ClickFunc(l)
	}
	return nil
}

func (f *FakeDriver) ScriptClick(l browser.Locator) error {
	f.record("ScriptClick(%s)", l)
	if f.ScriptClickFunc != nil {
		return f.ScriptClickFunc(l)
	}
	return nil
}

func (f *FakeDriver) ScrollIntoView(l browser.Locator) error {
	f.record("ScrollIntoView(%s)", l)
	if f.ScrollIntoViewFunc != nil {
		return f.ScrollIntoViewFunc(l)
	}
	return nil
}

func (f *FakeDriver) PageSource() (string, error) {
	f.record("PageSource()")
	if f.PageSourceFunc != nil {
		return f.PageSourceFunc()
	}
	return f.Source, nil
}

func (f *FakeDriver) Screenshot() ([]byte, error) {
	f.record("Screenshot()")
	if f.ScreenshotFunc != nil {
		return f.ScreenshotFunc()
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeDriver) Quit() error {
	f.record("Quit()")
	if f.QuitFunc != nil {
		return f.QuitFunc()
	}
	return nil
}
