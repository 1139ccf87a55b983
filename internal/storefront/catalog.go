// Package storefront serves a small retail site exposing the element ids and
// link texts the purchase flow relies on. It backs the e2e suite and the
// store command.
package storefront

import (
	"strings"
	"unicode"
)

// Product is a catalog entry
type Product struct {
	ID     string
	Name   string
	Type   string
	Price  string
	Colors []string
}

// Title is the link text shown for the product
func (p Product) Title() string {
	return p.Name + " " + p.Type
}

// Matches reports whether a search query refers to this product. Queries are
// compared without case or whitespace so "Echo DotSmart Speaker" still finds
// the Echo Dot.
func (p Product) Matches(query string) bool {
	q := fold(query)
	if q == "" {
		return true
	}
	name := fold(p.Name)
	return strings.Contains(fold(p.Title()), q) || strings.Contains(q, name)
}

// DefaultCatalog returns the fixture products
func DefaultCatalog() []Product {
	return []Product{
		{ID: "B09B8V1LZ3", Name: "Echo Dot", Type: "Smart Speaker", Price: "$49.99", Colors: []string{"Charcoal", "Glacier White", "Deep Sea Blue"}},
		{ID: "B0BF75MP5K", Name: "Echo Pop", Type: "Smart Speaker", Price: "$39.99", Colors: []string{"Charcoal", "Lavender Bloom"}},
		{ID: "B0C2RYLWXM", Name: "Kindle Paperwhite", Type: "E-Reader", Price: "$149.99", Colors: []string{"Black", "Agave Green"}},
		{ID: "B0CX23V2ZK", Name: "Fire TV Stick 4K", Type: "Streaming Device", Price: "$49.99"},
	}
}

// Search returns the products matching query, in catalog order
func Search(catalog []Product, query string) []Product {
	var found []Product
	for _, p := range catalog {
		if p.Matches(query) {
			found = append(found, p)
		}
	}
	return found
}

// Find returns the product with the given id
func Find(catalog []Product, id string) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
