package vision

import (
	"context"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
)

// RandomExtractor returns independently drawn values in [0,1). It ignores the image.
type RandomExtractor struct {
	rng        randutil.Source
	dimensions int
}

// NewRandomExtractor creates a RandomExtractor. dimensions <= 0 uses the default of 128.
func NewRandomExtractor(rng randutil.Source, dimensions int) *RandomExtractor {
	if dimensions <= 0 {
		dimensions = domain.DefaultVectorDimension
	}
	return &RandomExtractor{rng: rng, dimensions: dimensions}
}

// Analyze implements Extractor.
func (e *RandomExtractor) Analyze(ctx context.Context, _ string) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := make(domain.FeatureVector, e.dimensions)
	for i := range features {
		features[i] = e.rng.Float64()
	}

	return &domain.AnalysisResult{
		Features:   features,
		Category:   PlaceholderCategory,
		Confidence: PlaceholderConfidence,
	}, nil
}

// Dimensions implements Extractor.
func (e *RandomExtractor) Dimensions() int {
	return e.dimensions
}
