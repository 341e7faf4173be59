package handler

import (
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/similarity"
)

// productView is the JSON shape of a product. Prices are plain numbers on the wire.
type productView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Price       float64  `json:"price"`
	Brand       string   `json:"brand"`
	Features    []string `json:"features"`
}

type scoredView struct {
	productView
	Similarity float64 `json:"similarity"`
}

func newProductView(p *domain.Product) productView {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price.InexactFloat64(),
		Brand:       p.Brand,
		Features:    features,
	}
}

func newProductViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for i := range products {
		out = append(out, newProductView(&products[i]))
	}
	return out
}

func newScoredViews(results []domain.ScoredProduct) []scoredView {
	out := make([]scoredView, 0, len(results))
	for i := range results {
		out = append(out, scoredView{
			productView: newProductView(&results[i].Product),
			Similarity:  similarity.Round2(results[i].Similarity),
		})
	}
	return out
}
