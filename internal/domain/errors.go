package domain

import "errors"

var (
	// ErrInvalidInput is returned when the image reference or request options are unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVectorLengthMismatch means an extractor and the metric disagree on vector length.
	// It is a programming error, not a per-request condition.
	ErrVectorLengthMismatch = errors.New("feature vector length mismatch")

	// ErrExtractionFailed is returned when an extractor cannot produce a result.
	ErrExtractionFailed = errors.New("feature extraction failed")

	// ErrInvalidCatalog is returned when loaded products break a catalog invariant.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrProductNotFound is returned by lookups for unknown product ids.
	ErrProductNotFound = errors.New("product not found")
)
