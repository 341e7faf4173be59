package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/timmy/vismatch/internal/catalog"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
	"github.com/timmy/vismatch/internal/vision"
)

func builtinCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(context.Background(), catalog.BuiltinLoader{})
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	return cat
}

func TestHeuristicStrategyScores(t *testing.T) {
	cat := builtinCatalog(t)
	svc := NewSearchService(cat, NewHeuristicStrategy(randutil.New(7)), nil)

	results, err := svc.FindSimilar(context.Background(), "https://example.com/sneaker.jpg")
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(results) != DefaultMaxResults {
		t.Fatalf("len = %d, want %d", len(results), DefaultMaxResults)
	}
	for _, r := range results {
		if r.Similarity < 0.3 || r.Similarity > 0.9 {
			t.Errorf("%s similarity %v outside [0.3,0.9]", r.ID, r.Similarity)
		}
	}
}

func TestHeuristicStrategyFavorsFashion(t *testing.T) {
	cat := builtinCatalog(t)
	strategy := NewHeuristicStrategy(randutil.New(11))

	const trials = 2000
	var fashion, other float64
	var fashionN, otherN int
	for i := 0; i < trials; i++ {
		score, err := strategy.Prepare(context.Background(), "https://example.com/sneaker.jpg")
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range cat.All() {
			s, err := score(context.Background(), &p)
			if err != nil {
				t.Fatal(err)
			}
			switch domain.GroupOf(p.Category) {
			case domain.GroupFashion:
				fashion += s
				fashionN++
			case domain.GroupNone:
				other += s
				otherN++
			}
		}
	}

	// Fashion products get the bonus about 70% of the time: mean ~0.64 versus ~0.5.
	fashionMean := fashion / float64(fashionN)
	otherMean := other / float64(otherN)
	if fashionMean-otherMean < 0.1 {
		t.Errorf("fashion mean %.3f not clearly above unrelated mean %.3f", fashionMean, otherMean)
	}
}

func TestFeatureStrategyRandom(t *testing.T) {
	cat := builtinCatalog(t)

	run := func() []domain.ScoredProduct {
		rng := randutil.New(5)
		strategy := NewFeatureStrategy(vision.NewRandomExtractor(rng, 128), cat, 1)
		svc := NewSearchService(cat, strategy, nil)
		results, err := svc.FindSimilar(context.Background(), "https://example.com/anything.jpg")
		if err != nil {
			t.Fatalf("FindSimilar() error = %v", err)
		}
		return results
	}

	first := run()
	if len(first) != DefaultMaxResults {
		t.Fatalf("len = %d, want %d", len(first), DefaultMaxResults)
	}
	for _, r := range first {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("%s similarity %v outside [0,1]", r.ID, r.Similarity)
		}
	}

	second := run()
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Similarity != second[i].Similarity {
			t.Fatalf("seeded runs differ at %d", i)
		}
	}
}

type constExtractor struct {
	vec      domain.FeatureVector
	queryVec domain.FeatureVector
	failOn   string
}

func (c constExtractor) Analyze(ctx context.Context, ref string) (*domain.AnalysisResult, error) {
	if ref == c.failOn {
		return nil, domain.ErrExtractionFailed
	}
	vec := c.vec
	if c.queryVec != nil && ref == "query" {
		vec = c.queryVec
	}
	return &domain.AnalysisResult{Features: vec, Category: vision.PlaceholderCategory, Confidence: 1}, nil
}

func (c constExtractor) Dimensions() int { return len(c.vec) }

func TestFeatureStrategyIdenticalVectors(t *testing.T) {
	cat := builtinCatalog(t)
	strategy := NewFeatureStrategy(constExtractor{vec: domain.FeatureVector{0.2, 0.4, 0.6}}, cat, 4)

	results, err := NewSearchService(cat, strategy, nil).FindSimilar(context.Background(), "query")
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	for _, r := range results {
		if math.Abs(r.Similarity-1) > 1e-9 {
			t.Errorf("%s similarity = %v, want 1", r.ID, r.Similarity)
		}
	}
	// All ties: the ranking keeps catalog order.
	if results[0].ID != "1" {
		t.Errorf("first result = %s, want 1", results[0].ID)
	}
}

func TestFeatureStrategyErrors(t *testing.T) {
	cat := builtinCatalog(t)
	first := cat.All()[0]

	testCases := []struct {
		name      string
		extractor constExtractor
		want      error
	}{
		{
			name:      "query extraction fails",
			extractor: constExtractor{vec: domain.FeatureVector{1}, failOn: "query"},
			want:      domain.ErrExtractionFailed,
		},
		{
			name:      "product extraction fails",
			extractor: constExtractor{vec: domain.FeatureVector{1}, failOn: first.ImageURL},
			want:      domain.ErrExtractionFailed,
		},
		{
			name:      "vector length mismatch",
			extractor: constExtractor{vec: domain.FeatureVector{1, 2}, queryVec: domain.FeatureVector{1, 2, 3}},
			want:      domain.ErrVectorLengthMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewSearchService(cat, NewFeatureStrategy(tc.extractor, cat, 2), nil)
			_, err := svc.FindSimilar(context.Background(), "query")
			if !errors.Is(err, tc.want) {
				t.Errorf("FindSimilar() error = %v, want %v", err, tc.want)
			}
		})
	}
}
