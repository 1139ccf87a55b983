package storefront

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/qanai/shopflow/internal/config"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// CartLine is one product in the cart
type CartLine struct {
	Product  Product
	Color    string
	Quantity int
}

type pageData struct {
	StoreTitle     string
	Query          string
	Products       []Product
	Product        Product
	CartOverlay    bool
	WarrantyDialog bool
	Lines          []CartLine
}

// Store is the storefront HTTP handler. The cart is shared by every visitor.
type Store struct {
	config    config.StoreConfig
	catalog   []Product
	templates *template.Template
	mux       *http.ServeMux

	mu   sync.Mutex
	cart []CartLine
}

// NewStore creates a storefront serving catalog
func NewStore(cfg config.StoreConfig, catalog []Product) (*Store, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Store{
		config:    cfg,
		catalog:   catalog,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/s", s.handleSearch)
	s.mux.HandleFunc("/dp/", s.handleProduct)
	s.mux.HandleFunc("/cart", s.handleCart)
	return s, nil
}

// ServeHTTP routes a storefront request
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Cart returns a copy of the cart contents
func (s *Store) Cart() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartLine(nil), s.cart...)
}

func (s *Store) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, "home.html", s.page(""))
}

func (s *Store) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("k")
	data := s.page(query)
	data.Products = Search(s.catalog, query)
	log.Debug().Str("query", query).Int("results", len(data.Products)).Msg("Search")
	s.render(w, "results.html", data)
}

func (s *Store) handleProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	product, ok := Find(s.catalog, strings.TrimPrefix(r.URL.Path, "/dp/"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := s.page("")
	data.Product = product
	s.render(w, "product.html", data)
}

// handleCart lists the cart on GET and adds a product on POST
func (s *Store) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := s.page("")
		data.Lines = s.Cart()
		s.render(w, "cart.html", data)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		product, ok := Find(s.catalog, r.PostForm.Get("id"))
		if !ok {
			http.Error(w, "Unknown product", http.StatusNotFound)
			return
		}
		s.add(product, r.PostForm.Get("color"))
		log.Info().Str("product", product.ID).Str("color", r.PostForm.Get("color")).Msg("Added to cart")
		w.WriteHeader(http.StatusCreated)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Store) add(p Product, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product.ID == p.ID && s.cart[i].Color == color {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, CartLine{Product: p, Color: color, Quantity: 1})
}

func (s *Store) page(query string) pageData {
	return pageData{
		StoreTitle:     s.config.Title,
		Query:          query,
		CartOverlay:    s.config.CartOverlay,
		WarrantyDialog: s.config.WarrantyDialog,
	}
}

func (s *Store) render(w http.ResponseWriter, name string, data pageData) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
