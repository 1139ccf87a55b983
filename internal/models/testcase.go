package models

import (
	"errors"
	"fmt"
)

// TestCase is the expected product data for one run, read from the data sheet
type TestCase struct {
	Item  string
	Type  string
	Color string
	Price string
}

// Domain errors
var (
	ErrEmptyItem  = errors.New("item cannot be empty")
	ErrEmptyType  = errors.New("type cannot be empty")
	ErrEmptyColor = errors.New("color cannot be empty")
	ErrEmptyPrice = errors.New("price cannot be empty")
)

// NewTestCase creates a test case with validation
func NewTestCase(item, typ, color, price string) (TestCase, error) {
	tc := TestCase{Item: item, Type: typ, Color: color, Price: price}
	if err := tc.Validate(); err != nil {
		return TestCase{}, err
	}
	return tc, nil
}

// Validate checks that every field is present
func (tc TestCase) Validate() error {
	switch {
	case tc.Item == "":
		return ErrEmptyItem
	case tc.Type == "":
		return ErrEmptyType
	case tc.Color == "":
		return ErrEmptyColor
	case tc.Price == "":
		return ErrEmptyPrice
	}
	return nil
}

// Query returns the text typed into the search box: item and type back to back
func (tc TestCase) Query() string {
	return tc.Item + tc.Type
}

// Expectations returns the values the search results page is checked against
func (tc TestCase) Expectations() []string {
	return []string{tc.Item, tc.Price, tc.Color, tc.Type}
}

func (tc TestCase) String() string {
	return fmt.Sprintf("Item=%s, Type=%s, Color=%s, Price=%s", tc.Item, tc.Type, tc.Color, tc.Price)
}
