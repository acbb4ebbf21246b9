package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

//go:embed data/products.json
var defaultCatalog []byte

// ProductRepository defines the interface for catalog access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// catalogDocument is the menu data document: products keyed by id in
// display order.
type catalogDocument struct {
	Products models.Ordered[models.Product] `json:"products"`
}

// InMemoryProductRepository implements ProductRepository over a catalog
// loaded once at startup
type InMemoryProductRepository struct {
	products models.Ordered[models.Product]
}

// NewInMemoryProductRepository creates a repository seeded with the
// embedded default menu
func NewInMemoryProductRepository() (*InMemoryProductRepository, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile reads a catalog document from path
func LoadCatalogFile(path string) (*InMemoryProductRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a catalog document. A product without
// an "id" field takes its key.
func ParseCatalog(data []byte) (*InMemoryProductRepository, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if doc.Products.Len() == 0 {
		return nil, fmt.Errorf("%w: no products", ErrInvalidCatalog)
	}

	repo := &InMemoryProductRepository{}
	var err error
	doc.Products.Each(func(id string, p models.Product) {
		if err != nil {
			return
		}
		if p.ID == "" {
			p.ID = id
		}
		if p.ID != id {
			err = fmt.Errorf("%w: product key %q has id %q", ErrInvalidCatalog, id, p.ID)
			return
		}
		if verr := p.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidCatalog, verr)
			return
		}
		repo.products.Set(id, p)
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GetAll returns all products in menu order
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, r.products.Len())
	r.products.Each(func(_ string, p models.Product) {
		products = append(products, p)
	})
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, exists := r.products.Get(id)
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}
