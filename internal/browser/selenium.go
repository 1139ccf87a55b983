package browser

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/qanai/shopflow/internal/config"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// SeleniumDriver drives a browser over WebDriver through geckodriver or chromedriver
type SeleniumDriver struct {
	service *selenium.Service
	wd      selenium.WebDriver
}

func launchSelenium(opts Options) (Driver, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to pick a driver port: %w", err)
	}

	caps := selenium.Capabilities{"browserName": opts.Browser}
	var service *selenium.Service

	switch opts.Browser {
	case "chrome":
		service, err = selenium.NewChromeDriverService(opts.DriverPath, port)
		chromeCaps := chrome.Capabilities{Path: opts.BrowserPath}
		if opts.Headless {
			chromeCaps.Args = []string{"--headless=new"}
		}
		caps.AddChrome(chromeCaps)
	default:
		service, err = selenium.NewGeckoDriverService(opts.DriverPath, port)
		firefoxCaps := firefox.Capabilities{Binary: opts.BrowserPath}
		if opts.Headless {
			firefoxCaps.Args = []string{"-headless"}
		}
		caps.AddFirefox(firefoxCaps)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", opts.DriverPath, err)
	}

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", port))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to open webdriver session: %w", err)
	}

	return &SeleniumDriver{service: service, wd: wd}, nil
}

func (d *SeleniumDriver) Navigate(url string) error {
	return d.wd.Get(url)
}

func (d *SeleniumDriver) Maximize(v config.Viewport) error {
	if err := d.wd.MaximizeWindow(""); err != nil {
		// headless browsers have no window manager to maximize against
		return d.wd.ResizeWindow("", v.Width, v.Height)
	}
	return nil
}

func (d *SeleniumDriver) WaitForTitle(substr string, timeout time.Duration) error {
	err := d.wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		title, err := wd.Title()
		if err != nil {
			return false, nil
		}
		return strings.Contains(title, substr), nil
	}, timeout)
	if err != nil {
		return fmt.Errorf("%w waiting for title containing %q: %v", ErrTimeout, substr, err)
	}
	return nil
}

func (d *SeleniumDriver) WaitPresent(l Locator, timeout time.Duration) error {
	by, value := seleniumBy(l)
	err := d.wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		_, err := wd.FindElement(by, value)
		return err == nil, nil
	}, timeout)
	if err != nil {
		return fmt.Errorf("%w waiting for %s: %v", ErrTimeout, l, err)
	}
	return nil
}

func (d *SeleniumDriver) WaitClickable(l Locator, timeout time.Duration) error {
	by, value := seleniumBy(l)
	err := d.wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		el, err := wd.FindElement(by, value)
		if err != nil {
			return false, nil
		}
		displayed, _ := el.IsDisplayed()
		enabled, _ := el.IsEnabled()
		return displayed && enabled, nil
	}, timeout)
	if err != nil {
		return fmt.Errorf("%w waiting for %s to be clickable: %v", ErrTimeout, l, err)
	}
	return nil
}

func (d *SeleniumDriver) Clear(l Locator) error {
	el, err := d.find(l)
	if err != nil {
		return err
	}
	return classifySelenium(el.Clear(), l)
}

func (d *SeleniumDriver) Type(l Locator, text string) error {
	el, err := d.find(l)
	if err != nil {
		return err
	}
	return classifySelenium(el.SendKeys(text), l)
}

func (d *SeleniumDriver) Click(l Locator) error {
	el, err := d.find(l)
	if err != nil {
		return err
	}
	return classifySelenium(el.Click(), l)
}

func (d *SeleniumDriver) ScriptClick(l Locator) error {
	return d.script(l, "arguments[0].click();")
}

func (d *SeleniumDriver) ScrollIntoView(l Locator) error {
	return d.script(l, "arguments[0].scrollIntoView(true);")
}

func (d *SeleniumDriver) PageSource() (string, error) {
	return d.wd.PageSource()
}

func (d *SeleniumDriver) Screenshot() ([]byte, error) {
	return d.wd.Screenshot()
}

// Quit ends the webdriver session and stops the driver process
func (d *SeleniumDriver) Quit() error {
	return errors.Join(d.wd.Quit(), d.service.Stop())
}

func (d *SeleniumDriver) find(l Locator) (selenium.WebElement, error) {
	by, value := seleniumBy(l)
	el, err := d.wd.FindElement(by, value)
	if err != nil {
		return nil, classifySelenium(err, l)
	}
	return el, nil
}

func (d *SeleniumDriver) script(l Locator, js string) error {
	el, err := d.find(l)
	if err != nil {
		return err
	}
	_, err = d.wd.ExecuteScript(js, []interface{}{el})
	return classifySelenium(err, l)
}

func seleniumBy(l Locator) (string, string) {
	switch l.By {
	case ByID:
		return selenium.ByID, l.Value
	case ByPartialLinkText:
		return selenium.ByPartialLinkText, l.Value
	default:
		return selenium.ByXPATH, l.XPath()
	}
}

// classifySelenium maps W3C WebDriver error codes onto the driver errors
func classifySelenium(err error, l Locator) error {
	if err == nil {
		return nil
	}

	code := err.Error()
	var wdErr *selenium.Error
	if errors.As(err, &wdErr) {
		code = wdErr.Err
	}

	switch {
	case strings.Contains(code, "element click intercepted"):
		return fmt.Errorf("%w: %s: %v", ErrClickIntercepted, l, err)
	case strings.Contains(code, "element not interactable"),
		strings.Contains(code, "invalid element state"):
		return fmt.Errorf("%w: %s: %v", ErrNotInteractable, l, err)
	case strings.Contains(code, "no such element"):
		return fmt.Errorf("%w: %s: %v", ErrNoSuchElement, l, err)
	case strings.Contains(code, "timeout"):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, l, err)
	}
	return fmt.Errorf("%s: %w", l, err)
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
