package service

import (
	"context"
	"fmt"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
	"github.com/timmy/vismatch/internal/similarity"
	"github.com/timmy/vismatch/internal/vision"
	"golang.org/x/sync/errgroup"
)

const (
	StrategyHeuristic = "heuristic"
	StrategyFeatures  = "features"
)

// Strategy turns a query into a per-candidate ScoreFunc.
type Strategy interface {
	Name() string
	Prepare(ctx context.Context, imageRef string) (ScoreFunc, error)
}

// HeuristicStrategy classifies the query against each candidate with fresh random
// draws and scores with HeuristicScore.
type HeuristicStrategy struct {
	heuristic *vision.Heuristic
	rng       randutil.Source
}

// NewHeuristicStrategy creates a HeuristicStrategy. Both the classifier and the score
// draw from rng.
func NewHeuristicStrategy(rng randutil.Source) *HeuristicStrategy {
	return &HeuristicStrategy{
		heuristic: vision.NewHeuristic(rng),
		rng:       rng,
	}
}

func (s *HeuristicStrategy) Name() string { return StrategyHeuristic }

func (s *HeuristicStrategy) Prepare(_ context.Context, imageRef string) (ScoreFunc, error) {
	signals := vision.Inspect(imageRef)
	return func(_ context.Context, p *domain.Product) (float64, error) {
		group := s.heuristic.Classify(signals)
		return similarity.HeuristicScore(s.rng, group, p.Category), nil
	}, nil
}

// FeatureStrategy analyses the query and every product image, then scores by cosine
// similarity. Product images are analysed per query.
type FeatureStrategy struct {
	extractor   vision.Extractor
	catalog     productSource
	concurrency int
}

type productSource interface {
	All() []domain.Product
}

// NewFeatureStrategy creates a FeatureStrategy analysing up to concurrency product
// images at once.
func NewFeatureStrategy(extractor vision.Extractor, catalog productSource, concurrency int) *FeatureStrategy {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FeatureStrategy{
		extractor:   extractor,
		catalog:     catalog,
		concurrency: concurrency,
	}
}

func (s *FeatureStrategy) Name() string { return StrategyFeatures }

func (s *FeatureStrategy) Prepare(ctx context.Context, imageRef string) (ScoreFunc, error) {
	query, err := s.extractor.Analyze(ctx, imageRef)
	if err != nil {
		return nil, fmt.Errorf("analyze query image: %w", err)
	}

	vectors, err := s.analyzeCatalog(ctx)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, p *domain.Product) (float64, error) {
		v, ok := vectors[p.ID]
		if !ok {
			return 0, fmt.Errorf("%w: no features for product %s", domain.ErrExtractionFailed, p.ID)
		}
		return similarity.Cosine(query.Features, v)
	}, nil
}

func (s *FeatureStrategy) analyzeCatalog(ctx context.Context) (map[string]domain.FeatureVector, error) {
	products := s.catalog.All()
	vectors := make([]domain.FeatureVector, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range products {
		g.Go(func() error {
			res, err := s.extractor.Analyze(gctx, products[i].ImageURL)
			if err != nil {
				return fmt.Errorf("analyze product %s: %w", products[i].ID, err)
			}
			vectors[i] = res.Features
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.FeatureVector, len(products))
	for i, p := range products {
		byID[p.ID] = vectors[i]
	}
	return byID, nil
}
