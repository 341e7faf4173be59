// Package vision turns image references into feature vectors and coarse category
// signals. None of the extractors here perform real computer vision: RandomExtractor
// and Heuristic stand in for a model, RemoteExtractor delegates to an external API.
package vision

import (
	"context"

	"github.com/timmy/vismatch/internal/domain"
)

const (
	// PlaceholderCategory is reported when the extractor has no category model.
	PlaceholderCategory = "general"

	// PlaceholderConfidence is the fixed confidence of the random extractor.
	PlaceholderConfidence = 0.85
)

// Extractor converts an image reference into an AnalysisResult.
// Implementations must return vectors of a fixed length for the life of the process.
type Extractor interface {
	Analyze(ctx context.Context, imageRef string) (*domain.AnalysisResult, error)
	Dimensions() int
}
