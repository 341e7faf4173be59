package similarity

import (
	"math"
	"testing"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestHeuristicScore(t *testing.T) {
	testCases := []struct {
		name     string
		draw     float64
		group    domain.CategoryGroup
		category string
		want     float64
	}{
		{name: "no group low draw", draw: 0, group: domain.GroupNone, category: "sneakers", want: 0.3},
		{name: "no group mid draw", draw: 0.5, group: domain.GroupNone, category: "laptops", want: 0.5},
		{name: "in group", draw: 0.5, group: domain.GroupFashion, category: "sneakers", want: 0.7},
		{name: "other group", draw: 0.5, group: domain.GroupFashion, category: "laptops", want: 0.5},
		{name: "ungrouped category", draw: 0.5, group: domain.GroupElectronics, category: "headphones", want: 0.5},
		{name: "appliance bonus", draw: 0.25, group: domain.GroupAppliance, category: "cookware", want: 0.6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := HeuristicScore(fixedSource(tc.draw), tc.group, tc.category)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("HeuristicScore() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHeuristicScoreBounds(t *testing.T) {
	rng := randutil.New(42)
	const trials = 10000

	testCases := []struct {
		name     string
		group    domain.CategoryGroup
		category string
		lo, hi   float64
	}{
		{name: "no group", group: domain.GroupNone, category: "sneakers", lo: 0.3, hi: 0.7},
		{name: "electronics bonus", group: domain.GroupElectronics, category: "smartphones", lo: 0.5, hi: 0.9},
		{name: "fashion bonus", group: domain.GroupFashion, category: "sneakers", lo: 0.5, hi: 0.9},
		{name: "appliance bonus", group: domain.GroupAppliance, category: "appliances", lo: 0.5, hi: 0.9},
		{name: "other group", group: domain.GroupAppliance, category: "laptops", lo: 0.3, hi: 0.7},
		{name: "ungrouped category under electronics", group: domain.GroupElectronics, category: "headphones", lo: 0.3, hi: 0.7},
		{name: "ungrouped category under fashion", group: domain.GroupFashion, category: "headphones", lo: 0.3, hi: 0.7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < trials; i++ {
				got := HeuristicScore(rng, tc.group, tc.category)
				if got < tc.lo || got > tc.hi {
					t.Fatalf("trial %d: score %v outside [%v,%v]", i, got, tc.lo, tc.hi)
				}
				if Round2(got) != got {
					t.Fatalf("trial %d: score %v not rounded to two decimals", i, got)
				}
			}
		})
	}
}
