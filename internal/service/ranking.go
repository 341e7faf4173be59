package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/similarity"
)

// DefaultMaxResults caps a ranked result list.
const DefaultMaxResults = 20

// ScoreFunc scores one candidate against the current query.
type ScoreFunc func(ctx context.Context, p *domain.Product) (float64, error)

// Rank scores every candidate exactly once, in order, and returns the top limit by
// descending similarity. Ties keep catalog order. A scoring error aborts the ranking.
//
// Parameters:
//   - ctx: checked between candidates
//   - candidates: products in catalog order
//   - score: per-candidate score; results are clamped into [0,1]
//   - limit: maximum results; <= 0 uses DefaultMaxResults
//
// Returns:
//   - []domain.ScoredProduct: at most limit results in descending similarity
//   - error: the first scoring error or ctx.Err(); no partial results
func Rank(ctx context.Context, candidates []domain.Product, score ScoreFunc, limit int) ([]domain.ScoredProduct, error) {
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	scored := make([]domain.ScoredProduct, 0, len(candidates))
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := score(ctx, &candidates[i])
		if err != nil {
			return nil, fmt.Errorf("score product %s: %w", candidates[i].ID, err)
		}
		scored = append(scored, domain.ScoredProduct{
			Product:    candidates[i],
			Similarity: similarity.Clamp(s),
		})
	}

	slices.SortStableFunc(scored, func(a, b domain.ScoredProduct) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
