package steps

import (
	"fmt"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/capture"
)

// Search submits the test case query and checks the results page mentions at
// least one expected value. A failed check returns *AssertionError.
func Search(rc *RunContext) error {
	tc := rc.TestCase
	box := browser.ID(rc.Locators.SearchBox)

	if err := rc.Driver.Clear(box); err != nil {
		return fmt.Errorf("failed to clear search box: %w", err)
	}
	if err := rc.Driver.Type(box, tc.Query()); err != nil {
		return fmt.Errorf("failed to type query: %w", err)
	}
	if err := rc.Driver.Click(browser.ID(rc.Locators.SearchButton)); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	rc.Logger.Info().Str("item", tc.Item).Str("type", tc.Type).Msg("Searched for item")

	rc.snapshot(capture.StepSearch)

	if err := rc.Driver.WaitPresent(browser.PartialLinkText(tc.Type), rc.Timeouts.Search); err != nil {
		return fmt.Errorf("search results never showed a %q link: %w", tc.Type, err)
	}

	source, err := rc.Driver.PageSource()
	if err != nil {
		return fmt.Errorf("failed to read page source: %w", err)
	}
	if !containsAny(source, tc.Expectations()) {
		rc.Logger.Error().Strs("expected", tc.Expectations()).Msg(AssertionMessage)
		return &AssertionError{Expected: tc.Expectations()}
	}

	rc.Logger.Info().Str("item", tc.Item).Msg("Search completed")
	return nil
}
