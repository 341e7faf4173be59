// Package similarity implements the scoring metrics used to rank catalog products
// against a query image.
package similarity

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/timmy/vismatch/internal/domain"
)

// Cosine returns the cosine similarity of a and b clamped into [0,1].
// Anti-correlated vectors score 0. A zero-norm vector scores 0 against anything.
func Cosine(a, b domain.FeatureVector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrVectorLengthMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return Clamp(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

// Clamp bounds a score into [0,1]. NaN becomes 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// Round2 rounds a score to two decimal places.
func Round2(score float64) float64 {
	return decimal.NewFromFloat(score).Round(2).InexactFloat64()
}
