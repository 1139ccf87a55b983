package config

import (
	"os"
	"strconv"
)

// StoreConfig holds settings for the fixture storefront server
type StoreConfig struct {
	Port  string
	Title string
	// CartOverlay covers the add-to-cart button so native clicks are intercepted
	CartOverlay bool
	// WarrantyDialog shows the protection-plan dialog after adding to cart
	WarrantyDialog bool
}

// DefaultStoreTitle contains the default expected title substring so the
// flow runs against the fixture without extra configuration
const DefaultStoreTitle = "Shopflow Demo Store - " + DefaultTitleContains

// LoadStoreConfig loads storefront configuration from environment variables
func LoadStoreConfig() StoreConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	title := os.Getenv("STORE_TITLE")
	if title == "" {
		title = DefaultStoreTitle
	}

	overlay, _ := strconv.ParseBool(os.Getenv("STORE_CART_OVERLAY"))

	warranty := true
	if v, err := strconv.ParseBool(os.Getenv("STORE_WARRANTY_DIALOG")); err == nil {
		warranty = v
	}

	return StoreConfig{
		Port:           port,
		Title:          title,
		CartOverlay:    overlay,
		WarrantyDialog: warranty,
	}
}
