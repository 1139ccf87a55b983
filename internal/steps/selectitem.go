package steps

import (
	"fmt"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/capture"
)

// Select opens the product matching the test case type and picks its color
// swatch when one shows up. The returned Outcome describes the swatch lookup;
// a missing swatch is not an error.
func Select(rc *RunContext) (Outcome, error) {
	tc := rc.TestCase
	rc.Logger.Info().Str("type", tc.Type).Str("color", tc.Color).Msg("Selecting item")

	product := browser.PartialLinkText(tc.Type)
	if err := rc.Driver.WaitClickable(product, rc.Timeouts.Select); err != nil {
		return NotFound, fmt.Errorf("product link never became clickable: %w", err)
	}
	if err := rc.Driver.ScrollIntoView(product); err != nil {
		return NotFound, fmt.Errorf("failed to scroll to product: %w", err)
	}
	if err := rc.Driver.Click(product); err != nil {
		return NotFound, fmt.Errorf("failed to open product: %w", err)
	}
	rc.Logger.Info().Str("type", tc.Type).Msg("Clicked on the product")

	outcome, err := rc.selectColor()
	if err != nil {
		return outcome, err
	}

	rc.Logger.Info().Msg("Default quantity (1) assumed.")
	rc.snapshot(capture.StepSelect)
	return outcome, nil
}

// selectColor clicks the swatch through script since overlapping elements
// tend to swallow native clicks on it
func (rc *RunContext) selectColor() (Outcome, error) {
	color := rc.TestCase.Color
	swatch := browser.ImageAlt(color)

	outcome, err := outcomeOf(rc.Driver.WaitPresent(swatch, rc.Timeouts.Select))
	if err != nil {
		return outcome, fmt.Errorf("failed waiting for color %q: %w", color, err)
	}
	if outcome != Found {
		rc.Logger.Warn().Str("color", color).Stringer("outcome", outcome).Msg("Color option not found or not clickable")
		return outcome, nil
	}

	if err := rc.Driver.ScrollIntoView(swatch); err != nil {
		rc.Logger.Warn().Err(err).Str("color", color).Msg("Failed to scroll to color option")
	}
	if err := rc.Driver.ScriptClick(swatch); err != nil {
		rc.Logger.Warn().Err(err).Str("color", color).Msg("Failed to click color option")
		return outcome, nil
	}
	rc.Logger.Info().Str("color", color).Msg("Selected color")
	return outcome, nil
}
