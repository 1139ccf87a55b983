package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Locators holds the element ids the flow relies on. Product links and color
// swatches are located from the test case instead.
type Locators struct {
	SearchBox       string `yaml:"search_box"`
	SearchButton    string `yaml:"search_button"`
	AddToCart       string `yaml:"add_to_cart"`
	DeclineWarranty string `yaml:"decline_warranty"`
}

// DefaultLocators returns the ids used by the target site
func DefaultLocators() Locators {
	return Locators{
		SearchBox:       "twotabsearchtextbox",
		SearchButton:    "nav-search-submit-button",
		AddToCart:       "add-to-cart-button",
		DeclineWarranty: "attachSiNoCoverage",
	}
}

// LoadLocators reads overrides from a YAML file on top of the defaults. An
// empty path returns the defaults.
func LoadLocators(path string) (Locators, error) {
	locators := DefaultLocators()
	if path == "" {
		return locators, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Locators{}, fmt.Errorf("failed to read locators file: %w", err)
	}
	if err := yaml.Unmarshal(data, &locators); err != nil {
		return Locators{}, fmt.Errorf("failed to parse locators file: %w", err)
	}
	if err := locators.Validate(); err != nil {
		return Locators{}, err
	}
	return locators, nil
}

// Validate ensures no locator was blanked out
func (l Locators) Validate() error {
	if l.SearchBox == "" {
		return fmt.Errorf("search_box locator cannot be empty")
	}
	if l.SearchButton == "" {
		return fmt.Errorf("search_button locator cannot be empty")
	}
	if l.AddToCart == "" {
		return fmt.Errorf("add_to_cart locator cannot be empty")
	}
	if l.DeclineWarranty == "" {
		return fmt.Errorf("decline_warranty locator cannot be empty")
	}
	return nil
}
