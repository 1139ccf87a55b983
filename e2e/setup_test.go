//go:build e2e

package e2e

import (
	"os"
	"testing"

	"github.com/playwright-community/playwright-go"
)

var (
	pw        *playwright.Playwright
	pwBrowser playwright.Browser
)

// TestMain starts one headless browser shared by every test. Browsers are
// installed with: go run github.com/playwright-community/playwright-go/cmd/playwright@v0.5200.1 install chromium
func TestMain(m *testing.M) {
	var err error

	pw, err = playwright.Run()
	if err != nil {
		panic(err)
	}

	pwBrowser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		panic(err)
	}

	code := m.Run()

	pwBrowser.Close()
	pw.Stop()
	os.Exit(code)
}
