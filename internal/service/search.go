// Package service implements visual product search over the catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/vismatch/internal/catalog"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/logger"
	"github.com/timmy/vismatch/internal/similarity"
	"github.com/timmy/vismatch/internal/vision"
)

// Sort orders accepted by Filters.SortBy.
const (
	SortBySimilarity = "similarity"
	SortByPriceLow   = "price-low"
	SortByPriceHigh  = "price-high"
)

// SearchConfig holds configuration for the search service.
type SearchConfig struct {
	MaxResults       int
	SimulatedLatency time.Duration // artificial delay before ranking, 0 disables
}

// SearchService ranks catalog products against query images.
type SearchService struct {
	catalog          *catalog.Catalog
	strategy         Strategy
	maxResults       int
	simulatedLatency time.Duration
}

// NewSearchService creates a new search service.
//
// Parameters:
//   - cat: the immutable product catalog to rank
//   - strategy: turns each query into a per-candidate score
//   - cfg: result cap and simulated latency; nil uses the defaults
//
// Returns:
//   - *SearchService: ready to serve concurrent searches
func NewSearchService(cat *catalog.Catalog, strategy Strategy, cfg *SearchConfig) *SearchService {
	s := &SearchService{
		catalog:    cat,
		strategy:   strategy,
		maxResults: DefaultMaxResults,
	}
	if cfg != nil {
		if cfg.MaxResults > 0 {
			s.maxResults = cfg.MaxResults
		}
		s.simulatedLatency = cfg.SimulatedLatency
	}
	return s
}

// Filters narrow and reorder a ranked result list. The zero value keeps the ranking.
type Filters struct {
	Category      string  `json:"category,omitempty"`
	MinSimilarity float64 `json:"minSimilarity,omitempty"`
	SortBy        string  `json:"sortBy,omitempty"`
}

// Validate checks filter values before any work is done.
func (f *Filters) Validate() error {
	switch f.SortBy {
	case "", SortBySimilarity, SortByPriceLow, SortByPriceHigh:
	default:
		return fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidInput, f.SortBy)
	}
	if f.MinSimilarity < 0 || f.MinSimilarity > 1 {
		return fmt.Errorf("%w: minimum similarity must be within [0,1]", domain.ErrInvalidInput)
	}
	return nil
}

// SearchRequest is a visual search with optional result filters.
type SearchRequest struct {
	ImageRef string
	Filters  Filters
}

// SearchResponse holds the filtered results of one search.
type SearchResponse struct {
	SearchID string // correlates the response with the search log lines
	Results  []domain.ScoredProduct
	Total    int
}

// FindSimilar ranks the whole catalog against imageRef and returns at most
// MaxResults products in descending similarity. A search id already carried by
// ctx is reused for logging.
//
// Parameters:
//   - ctx: context for cancellation and the request logger
//   - imageRef: data URI, raw image data or http(s) URL
//
// Returns:
//   - []domain.ScoredProduct: ranked results, ties in catalog order
//   - error: ErrInvalidInput for a blank or malformed reference, otherwise the
//     strategy or ranking failure
func (s *SearchService) FindSimilar(ctx context.Context, imageRef string) ([]domain.ScoredProduct, error) {
	if strings.TrimSpace(imageRef) == "" {
		return nil, fmt.Errorf("%w: image reference is required", domain.ErrInvalidInput)
	}

	if logger.GetSearchID(ctx) == "" {
		ctx = logger.SetSearchID(ctx, uuid.NewString())
	}
	ctx = logger.SetComponent(ctx, "search")
	ctx = logger.WithField(ctx, logger.FieldStrategy, s.strategy.Name())
	start := time.Now()

	ref, err := vision.ParseReference(imageRef)
	if err != nil {
		logger.CtxWarn(ctx, "Rejected image reference: %v", err)
		return nil, err
	}
	logger.CtxDebug(ctx, "Image reference parsed: kind=%s, format=%s, size=%dx%d",
		ref.Kind, ref.Format, ref.Width, ref.Height)

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	score, err := s.strategy.Prepare(ctx, imageRef)
	if err != nil {
		s.logFailure(ctx, "prepare", err)
		return nil, err
	}

	results, err := Rank(ctx, s.catalog.All(), score, s.maxResults)
	if err != nil {
		s.logFailure(ctx, "rank", err)
		return nil, err
	}

	logger.With(nil).
		WithDuration(time.Since(start).Milliseconds()).
		WithCount(len(results)).
		WithStatus("ok").
		Info(ctx, "Visual search completed")

	return results, nil
}

// Search runs FindSimilar and applies the request filters to its results.
//
// Parameters:
//   - ctx: context for cancellation and the request logger
//   - req: image reference and optional filters
//
// Returns:
//   - *SearchResponse: filtered results and the id of the search
//   - error: ErrInvalidInput for invalid filters or reference, otherwise the
//     search failure
func (s *SearchService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidInput)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}

	ctx = logger.SetSearchID(ctx, uuid.NewString())
	results, err := s.FindSimilar(ctx, req.ImageRef)
	if err != nil {
		return nil, err
	}

	results = ApplyFilters(results, req.Filters)
	return &SearchResponse{
		SearchID: logger.GetSearchID(ctx),
		Results:  results,
		Total:    len(results),
	}, nil
}

// ApplyFilters filters by category and minimum similarity, then reorders by SortBy.
// Filtering happens after the result cap, so it can only shrink the list. The minimum
// is compared against the two-decimal score clients are shown.
func ApplyFilters(results []domain.ScoredProduct, f Filters) []domain.ScoredProduct {
	out := make([]domain.ScoredProduct, 0, len(results))
	for _, r := range results {
		if f.Category != "" && f.Category != catalog.AllCategories && r.Category != f.Category {
			continue
		}
		if similarity.Round2(r.Similarity) < f.MinSimilarity {
			continue
		}
		out = append(out, r)
	}

	switch f.SortBy {
	case SortByPriceLow:
		slices.SortStableFunc(out, func(a, b domain.ScoredProduct) int {
			return a.Price.Cmp(b.Price)
		})
	case SortByPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.ScoredProduct) int {
			return b.Price.Cmp(a.Price)
		})
	}
	return out
}

// ListProducts browses the catalog by category and free text.
func (s *SearchService) ListProducts(_ context.Context, category, query string) []domain.Product {
	return s.catalog.Query(category, query)
}

// Categories returns the known product categories.
func (s *SearchService) Categories() []string {
	return s.catalog.Categories()
}

// GetProduct returns one product or ErrProductNotFound.
func (s *SearchService) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return &p, nil
}

// CatalogSize returns the number of searchable products.
func (s *SearchService) CatalogSize() int {
	return s.catalog.Len()
}

func (s *SearchService) wait(ctx context.Context) error {
	if s.simulatedLatency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.simulatedLatency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SearchService) logFailure(ctx context.Context, stage string, err error) {
	entry := logger.With(logger.Fields{"stage": stage}).WithStatus("failed")
	if errors.Is(err, domain.ErrVectorLengthMismatch) {
		entry.Error(ctx, "Feature vector contract violated during %s: %v", stage, err)
		return
	}
	entry.Warn(ctx, "Visual search failed during %s: %v", stage, err)
}
