package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/qanai/shopflow/internal/config"
)

// ChromedpDriver drives Chrome over the DevTools protocol. Locators are
// resolved as XPath, both for chromedp queries and for in-page scripts.
type ChromedpDriver struct {
	ctx          context.Context
	cancel       context.CancelFunc
	allocCancel  context.CancelFunc
	clickTimeout time.Duration
}

func launchChromedp(opts Options) (Driver, error) {
	allocOpts := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+3)
	allocOpts = append(allocOpts, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
	)
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// an empty Run starts the browser
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	clickTimeout := opts.ClickTimeout
	if clickTimeout <= 0 {
		clickTimeout = config.DefaultTimeouts().Click
	}
	return &ChromedpDriver{ctx: ctx, cancel: cancel, allocCancel: allocCancel, clickTimeout: clickTimeout}, nil
}

func (d *ChromedpDriver) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (d *ChromedpDriver) Navigate(url string) error {
	if err := d.run(navigationTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func (d *ChromedpDriver) Maximize(v config.Viewport) error {
	return d.run(d.clickTimeout, chromedp.EmulateViewport(int64(v.Width), int64(v.Height)))
}

func (d *ChromedpDriver) WaitForTitle(substr string, timeout time.Duration) error {
	return Poll(timeout, 250*time.Millisecond, func() (bool, error) {
		var title string
		if err := d.run(d.clickTimeout, chromedp.Title(&title)); err != nil {
			return false, nil
		}
		return strings.Contains(title, substr), nil
	})
}

func (d *ChromedpDriver) WaitPresent(l Locator, timeout time.Duration) error {
	err := d.run(timeout, chromedp.WaitReady(l.XPath(), chromedp.BySearch))
	return classifyChromedp(err, l)
}

func (d *ChromedpDriver) WaitClickable(l Locator, timeout time.Duration) error {
	err := d.run(timeout,
		chromedp.WaitVisible(l.XPath(), chromedp.BySearch),
		chromedp.WaitEnabled(l.XPath(), chromedp.BySearch),
	)
	return classifyChromedp(err, l)
}

func (d *ChromedpDriver) Clear(l Locator) error {
	return classifyChromedp(d.run(d.clickTimeout, chromedp.Clear(l.XPath(), chromedp.BySearch)), l)
}

func (d *ChromedpDriver) Type(l Locator, text string) error {
	return classifyChromedp(d.run(d.clickTimeout, chromedp.SendKeys(l.XPath(), text, chromedp.BySearch)), l)
}

// Click dispatches real mouse events at the element's centre. The DevTools
// protocol does not report who received them, so a hit test runs first.
func (d *ChromedpDriver) Click(l Locator) error {
	var hit string
	if err := d.run(d.clickTimeout, chromedp.Evaluate(hitTestScript(l), &hit)); err != nil {
		return classifyChromedp(err, l)
	}
	switch hit {
	case "missing":
		return fmt.Errorf("%w: %s", ErrNoSuchElement, l)
	case "hidden":
		return fmt.Errorf("%w: %s has no size", ErrNotInteractable, l)
	case "intercepted":
		return fmt.Errorf("%w: %s is covered by another element", ErrClickIntercepted, l)
	}
	err := d.run(d.clickTimeout, chromedp.Click(l.XPath(), chromedp.BySearch, chromedp.NodeVisible))
	return classifyChromedp(err, l)
}

func (d *ChromedpDriver) ScriptClick(l Locator) error {
	return d.script(l, "el.click()")
}

func (d *ChromedpDriver) ScrollIntoView(l Locator) error {
	return d.script(l, "el.scrollIntoView(true)")
}

func (d *ChromedpDriver) PageSource() (string, error) {
	var html string
	err := d.run(d.clickTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (d *ChromedpDriver) Screenshot() ([]byte, error) {
	var buf []byte
	err := d.run(d.clickTimeout*2, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Quit closes the tab and the browser process
func (d *ChromedpDriver) Quit() error {
	d.cancel()
	d.allocCancel()
	return nil
}

// script runs body with el bound to the located element
func (d *ChromedpDriver) script(l Locator, body string) error {
	js := fmt.Sprintf(`(function() {
	const el = %s;
	if (!el) { return false; }
	%s;
	return true;
})()`, findScript(l), body)

	var found bool
	if err := d.run(d.clickTimeout, chromedp.Evaluate(js, &found)); err != nil {
		return classifyChromedp(err, l)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNoSuchElement, l)
	}
	return nil
}

// findScript is a JS expression evaluating to the first node matching l
func findScript(l Locator) string {
	xpath, _ := json.Marshal(l.XPath())
	return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", xpath)
}

// hitTestScript reports whether the element at l's centre point is l itself
func hitTestScript(l Locator) string {
	return fmt.Sprintf(`(function() {
	const el = %s;
	if (!el) { return "missing"; }
	const r = el.getBoundingClientRect();
	if (r.width === 0 || r.height === 0) { return "hidden"; }
	const top = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (top && top !== el && !el.contains(top)) { return "intercepted"; }
	return "ok";
})()`, findScript(l))
}

func classifyChromedp(err error, l Locator) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, l, err)
	}
	return fmt.Errorf("%s: %w", l, err)
}
