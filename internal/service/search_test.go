package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/timmy/vismatch/internal/catalog"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/logger"
)

type stubStrategy struct {
	prepared int
	score    ScoreFunc
	err      error
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Prepare(context.Context, string) (ScoreFunc, error) {
	s.prepared++
	if s.err != nil {
		return nil, s.err
	}
	return s.score, nil
}

func newTestService(t *testing.T, products []domain.Product, strategy Strategy, cfg *SearchConfig) *SearchService {
	t.Helper()
	cat, err := catalog.New(products)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return NewSearchService(cat, strategy, cfg)
}

func fivePhones() []domain.Product {
	return []domain.Product{
		{ID: "a", Category: "smartphones", Price: decimal.NewFromInt(300)},
		{ID: "b", Category: "laptops", Price: decimal.NewFromInt(1200)},
		{ID: "c", Category: "smartphones", Price: decimal.NewFromInt(800)},
		{ID: "d", Category: "sneakers", Price: decimal.NewFromInt(90)},
		{ID: "e", Category: "smartphones", Price: decimal.NewFromInt(500)},
	}
}

// fixedScores scores products from a lookup table.
func fixedScores(scores map[string]float64) ScoreFunc {
	return func(_ context.Context, p *domain.Product) (float64, error) {
		return scores[p.ID], nil
	}
}

var fiveScores = map[string]float64{"a": 0.9, "b": 0.4, "c": 0.7, "d": 0.2, "e": 0.8}

func TestFindSimilarRejectsEmptyReference(t *testing.T) {
	for _, ref := range []string{"", "   ", "\n\t"} {
		strategy := &stubStrategy{score: fixedScores(fiveScores)}
		svc := newTestService(t, fivePhones(), strategy, nil)

		_, err := svc.FindSimilar(context.Background(), ref)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("FindSimilar(%q) error = %v, want ErrInvalidInput", ref, err)
		}
		if strategy.prepared != 0 {
			t.Errorf("FindSimilar(%q) prepared the strategy", ref)
		}
	}
}

func TestFindSimilarRejectsBrokenDataURI(t *testing.T) {
	strategy := &stubStrategy{score: fixedScores(fiveScores)}
	svc := newTestService(t, fivePhones(), strategy, nil)

	_, err := svc.FindSimilar(context.Background(), "data:image/png;base64,%%%")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("FindSimilar() error = %v, want ErrInvalidInput", err)
	}
	if strategy.prepared != 0 {
		t.Error("strategy prepared for an invalid reference")
	}
}

func TestFindSimilarSmallCatalog(t *testing.T) {
	svc := newTestService(t, fivePhones(), &stubStrategy{score: fixedScores(fiveScores)}, &SearchConfig{MaxResults: 20})

	got, err := svc.FindSimilar(context.Background(), "https://example.com/phone.jpg")
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}

	want := []string{"a", "e", "c", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFindSimilarPropagatesStrategyErrors(t *testing.T) {
	svc := newTestService(t, fivePhones(), &stubStrategy{err: domain.ErrExtractionFailed}, nil)

	_, err := svc.FindSimilar(context.Background(), "https://example.com/phone.jpg")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("FindSimilar() error = %v, want ErrExtractionFailed", err)
	}
}

func TestFindSimilarSimulatedLatency(t *testing.T) {
	strategy := &stubStrategy{score: fixedScores(fiveScores)}
	svc := newTestService(t, fivePhones(), strategy, &SearchConfig{SimulatedLatency: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.FindSimilar(ctx, "https://example.com/phone.jpg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("FindSimilar() error = %v, want DeadlineExceeded", err)
	}
	if strategy.prepared != 0 {
		t.Error("strategy prepared before the delay elapsed")
	}
}

func TestSearchFilters(t *testing.T) {
	testCases := []struct {
		name    string
		scores  map[string]float64
		filters Filters
		want    []string
	}{
		{name: "no filters", filters: Filters{}, want: []string{"a", "e", "c", "b", "d"}},
		{name: "all categories", filters: Filters{Category: "all"}, want: []string{"a", "e", "c", "b", "d"}},
		{name: "category", filters: Filters{Category: "smartphones"}, want: []string{"a", "e", "c"}},
		{name: "min similarity", filters: Filters{MinSimilarity: 0.7}, want: []string{"a", "e", "c"}},
		{name: "price low", filters: Filters{SortBy: SortByPriceLow}, want: []string{"d", "a", "e", "c", "b"}},
		{name: "price high", filters: Filters{SortBy: SortByPriceHigh}, want: []string{"b", "c", "e", "a", "d"}},
		{
			name:    "combined",
			filters: Filters{Category: "smartphones", MinSimilarity: 0.75, SortBy: SortByPriceHigh},
			want:    []string{"e", "a"},
		},
		{
			name:    "min similarity against displayed score",
			scores:  map[string]float64{"a": 0.7951, "b": 0.4, "c": 0.7949, "d": 0.2, "e": 0.1},
			filters: Filters{MinSimilarity: 0.8},
			want:    []string{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scores := tc.scores
			if scores == nil {
				scores = fiveScores
			}
			svc := newTestService(t, fivePhones(), &stubStrategy{score: fixedScores(scores)}, nil)
			resp, err := svc.Search(context.Background(), &SearchRequest{
				ImageRef: "https://example.com/phone.jpg",
				Filters:  tc.filters,
			})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if resp.Total != len(tc.want) || len(resp.Results) != len(tc.want) {
				t.Fatalf("total = %d, results = %d, want %d", resp.Total, len(resp.Results), len(tc.want))
			}
			for i, id := range tc.want {
				if resp.Results[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, resp.Results[i].ID, id)
				}
			}
		})
	}
}

func TestSearchRejectsInvalidFilters(t *testing.T) {
	testCases := []struct {
		name    string
		filters Filters
	}{
		{name: "unknown sort", filters: Filters{SortBy: "rating"}},
		{name: "min similarity above one", filters: Filters{MinSimilarity: 1.5}},
		{name: "negative min similarity", filters: Filters{MinSimilarity: -0.1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			strategy := &stubStrategy{score: fixedScores(fiveScores)}
			svc := newTestService(t, fivePhones(), strategy, nil)
			_, err := svc.Search(context.Background(), &SearchRequest{ImageRef: "x.jpg", Filters: tc.filters})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Search() error = %v, want ErrInvalidInput", err)
			}
			if strategy.prepared != 0 {
				t.Error("strategy prepared despite invalid filters")
			}
		})
	}
}

func TestCatalogBrowse(t *testing.T) {
	svc := newTestService(t, fivePhones(), &stubStrategy{}, nil)

	if got := svc.ListProducts(context.Background(), "smartphones", ""); len(got) != 3 {
		t.Errorf("ListProducts(smartphones) = %d products, want 3", len(got))
	}
	if got := svc.ListProducts(context.Background(), "", ""); len(got) != 5 {
		t.Errorf("ListProducts() = %d products, want 5", len(got))
	}
	if svc.CatalogSize() != 5 {
		t.Errorf("CatalogSize() = %d", svc.CatalogSize())
	}
	if len(svc.Categories()) != len(domain.Categories) {
		t.Errorf("Categories() = %v", svc.Categories())
	}

	p, err := svc.GetProduct(context.Background(), "c")
	if err != nil || p.ID != "c" {
		t.Errorf("GetProduct(c) = %v, %v", p, err)
	}
	if _, err := svc.GetProduct(context.Background(), "zzz"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("GetProduct(zzz) error = %v, want ErrProductNotFound", err)
	}
}

func TestSearchIDCorrelatesLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test"})
	ctx := log.WithContext(context.Background())

	svc := newTestService(t, fivePhones(), &stubStrategy{score: fixedScores(fiveScores)}, nil)
	resp, err := svc.Search(ctx, &SearchRequest{ImageRef: "https://example.com/phone.jpg"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.SearchID == "" {
		t.Fatal("empty SearchID")
	}

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line[logger.FieldSearchID] != resp.SearchID {
		t.Errorf("logged search_id = %v, want %s", line[logger.FieldSearchID], resp.SearchID)
	}
	if line[logger.FieldComponent] != "search" || line[logger.FieldStrategy] != "stub" || line[logger.FieldStatus] != "ok" {
		t.Errorf("log line = %v", line)
	}
	if line[logger.FieldCount] != float64(5) {
		t.Errorf("logged count = %v, want 5", line[logger.FieldCount])
	}
}
