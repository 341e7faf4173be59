package domain

// DefaultVectorDimension is the feature vector length of the built-in extractors.
const DefaultVectorDimension = 128

// FeatureVector is an image's position in an abstract similarity space.
// Two vectors can only be compared when their lengths match.
type FeatureVector []float64

// AnalysisResult is what an extractor returns for one image.
type AnalysisResult struct {
	Features   FeatureVector `json:"features"`
	Category   string        `json:"category"`
	Confidence float64       `json:"confidence"`
}
