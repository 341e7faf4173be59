package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Products are loaded once at startup and never mutated.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	ImageURL    string          `json:"imageUrl" yaml:"imageUrl"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Brand       string          `json:"brand" yaml:"brand"`
	Features    []string        `json:"features" yaml:"features"`
}

// Validate checks the per-product catalog invariants.
// Uniqueness of IDs is a catalog-wide property and is checked by the catalog itself.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidCatalog)
	}
	if !IsKnownCategory(p.Category) {
		return fmt.Errorf("%w: product %s has unknown category %q", ErrInvalidCatalog, p.ID, p.Category)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product %s has negative price %s", ErrInvalidCatalog, p.ID, p.Price)
	}
	return nil
}

// ScoredProduct pairs a product with its similarity to one query, in [0,1].
// It lives only for the duration of a single search.
type ScoredProduct struct {
	Product
	Similarity float64 `json:"similarity"`
}
