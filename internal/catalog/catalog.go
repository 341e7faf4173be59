// Package catalog holds the read-only product catalog searched by the ranking engine.
package catalog

import (
	"fmt"
	"strings"

	"github.com/timmy/vismatch/internal/domain"
)

// AllCategories is the category filter value that matches every product.
const AllCategories = "all"

// Catalog is an immutable, ordered product collection. It is safe for concurrent use
// because nothing mutates it after New returns.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New validates products and builds a catalog that owns a private copy of them.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", domain.ErrInvalidCatalog, p.ID)
		}
		p.Features = append([]string(nil), p.Features...)
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	return c.filter(func(*domain.Product) bool { return true })
}

// ByCategory returns the products of one category in catalog order.
// Unknown categories yield an empty slice: category filtering is advisory.
func (c *Catalog) ByCategory(category string) []domain.Product {
	if !domain.IsKnownCategory(category) {
		return []domain.Product{}
	}
	return c.filter(func(p *domain.Product) bool { return p.Category == category })
}

// Search returns products whose name, description or any feature contains text,
// ignoring case. Empty text matches everything.
func (c *Catalog) Search(text string) []domain.Product {
	needle := strings.ToLower(text)
	return c.filter(func(p *domain.Product) bool { return matchesText(p, needle) })
}

// Query combines ByCategory and Search. An empty category or "all" means any category.
func (c *Catalog) Query(category, text string) []domain.Product {
	if category == "" || category == AllCategories {
		return c.Search(text)
	}
	if !domain.IsKnownCategory(category) {
		return []domain.Product{}
	}
	needle := strings.ToLower(text)
	return c.filter(func(p *domain.Product) bool {
		return p.Category == category && matchesText(p, needle)
	})
}

func matchesText(p *domain.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, f := range p.Features {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Get looks a product up by id.
func (c *Catalog) Get(id string) (domain.Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return clone(c.products[idx]), true
}

// Categories returns the known category set in display order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), domain.Categories...)
}

func (c *Catalog) filter(keep func(*domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for i := range c.products {
		if keep(&c.products[i]) {
			out = append(out, clone(c.products[i]))
		}
	}
	return out
}

// clone copies the features slice so callers cannot reach catalog memory.
func clone(p domain.Product) domain.Product {
	p.Features = append([]string(nil), p.Features...)
	return p
}
