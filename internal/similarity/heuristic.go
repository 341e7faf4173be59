package similarity

import (
	"math"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
)

const (
	heuristicBase   = 0.3
	heuristicSpread = 0.4
	heuristicBonus  = 0.2
)

// HeuristicScore scores a candidate category against the group the query image was
// classified into. The base is uniform in [0.3,0.7); categories inside the group get +0.2.
// The result is capped at 1 and rounded to two decimals.
func HeuristicScore(rng randutil.Source, group domain.CategoryGroup, category string) float64 {
	score := heuristicBase + rng.Float64()*heuristicSpread
	if group != domain.GroupNone && domain.GroupOf(category) == group {
		score += heuristicBonus
	}
	return Round2(math.Min(1, score))
}
