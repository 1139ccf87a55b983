package steps

import (
	"errors"
	"fmt"

	"github.com/qanai/shopflow/internal/browser"
	"github.com/qanai/shopflow/internal/capture"
)

// AddToCart clicks the add-to-cart control, falling back to one script click
// when the native click is intercepted, then declines the warranty offer if
// it appears. The returned Outcome describes the warranty dialog lookup.
func AddToCart(rc *RunContext) (Outcome, error) {
	rc.Logger.Info().Msg("Adding the item to the cart")
	button := browser.ID(rc.Locators.AddToCart)

	if err := rc.Driver.ScrollIntoView(button); err != nil {
		return NotFound, fmt.Errorf("failed to find add-to-cart button: %w", err)
	}
	if err := rc.Driver.WaitClickable(button, rc.Timeouts.Cart); err != nil {
		return NotFound, fmt.Errorf("add-to-cart button never became clickable: %w", err)
	}

	if err := rc.Driver.Click(button); err != nil {
		if !errors.Is(err, browser.ErrClickIntercepted) {
			return NotFound, fmt.Errorf("failed to click add-to-cart: %w", err)
		}
		rc.Logger.Warn().Err(err).Msg("Click intercepted, retrying with script click")
		if err := rc.Driver.ScriptClick(button); err != nil {
			return NotFound, fmt.Errorf("script click on add-to-cart failed: %w", err)
		}
	}
	rc.Logger.Info().Msg("Clicked add-to-cart button")

	rc.snapshot(capture.StepAddToCart)

	return rc.declineWarranty()
}

// declineWarranty dismisses the protection plan offer. Both a missing dialog
// and a blocked button are tolerated.
func (rc *RunContext) declineWarranty() (Outcome, error) {
	decline := browser.ID(rc.Locators.DeclineWarranty)

	outcome, err := outcomeOf(rc.Driver.WaitClickable(decline, rc.Timeouts.Cart))
	if err != nil {
		return outcome, fmt.Errorf("failed waiting for warranty dialog: %w", err)
	}
	if outcome != Found {
		rc.Logger.Warn().Stringer("outcome", outcome).Msg("No warranty popup appeared")
		return outcome, nil
	}

	if err := rc.Driver.ScrollIntoView(decline); err != nil {
		rc.Logger.Warn().Err(err).Msg("Failed to scroll to decline button")
	}
	switch err := rc.Driver.Click(decline); {
	case err == nil:
		rc.Logger.Info().Msg("Declined warranty")
	case errors.Is(err, browser.ErrNotInteractable), errors.Is(err, browser.ErrClickIntercepted):
		rc.Logger.Warn().Err(err).Msg("Decline button not interactable, retrying with script click")
		if err := rc.Driver.ScriptClick(decline); err != nil {
			rc.Logger.Warn().Err(err).Msg("Script click on decline button failed")
		} else {
			rc.Logger.Info().Msg("Declined warranty with script click")
		}
	default:
		return outcome, fmt.Errorf("failed to decline warranty: %w", err)
	}
	return outcome, nil
}
