package vision

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/vismatch/internal/domain"
)

const (
	defaultRemoteEndpoint = "https://api.jina.ai/v1/embeddings"
	defaultRemoteModel    = "jina-clip-v2"
	defaultRemoteTimeout  = 10 * time.Second
)

// RemoteConfig holds configuration for RemoteExtractor.
type RemoteConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	RetryCount int
}

// RemoteExtractor calls an external multimodal embeddings API.
// The API has no category model, so results carry PlaceholderCategory.
type RemoteExtractor struct {
	client     *resty.Client
	endpoint   string
	model      string
	dimensions int
}

// NewRemoteExtractor creates a new remote extractor.
func NewRemoteExtractor(cfg *RemoteConfig) *RemoteExtractor {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultRemoteEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultRemoteModel
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = domain.DefaultVectorDimension
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	client.SetTimeout(timeout)
	client.SetRetryCount(cfg.RetryCount)
	client.SetRetryWaitTime(200 * time.Millisecond)
	client.SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
	})

	return &RemoteExtractor{
		client:     client,
		endpoint:   endpoint,
		model:      model,
		dimensions: dimensions,
	}
}

type remoteInput struct {
	Image string `json:"image"`
}

type remoteRequest struct {
	Model         string        `json:"model"`
	Dimensions    int           `json:"dimensions,omitempty"`
	Normalized    bool          `json:"normalized"`
	EmbeddingType string        `json:"embedding_type,omitempty"`
	Input         []remoteInput `json:"input"`
}

type remoteResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// Analyze implements Extractor.
func (e *RemoteExtractor) Analyze(ctx context.Context, imageRef string) (*domain.AnalysisResult, error) {
	ref, err := ParseReference(imageRef)
	if err != nil {
		return nil, err
	}

	image := ref.Raw
	if ref.Kind != KindURL {
		image = ref.Base64()
	}

	req := remoteRequest{
		Model:         e.model,
		Dimensions:    e.dimensions,
		Normalized:    true,
		EmbeddingType: "float",
		Input:         []remoteInput{{Image: image}},
	}

	var resp remoteResponse
	httpResp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(e.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call vision API: %w", domain.ErrExtractionFailed, err)
	}

	if httpResp.StatusCode() != http.StatusOK {
		if resp.Detail != "" {
			return nil, fmt.Errorf("%w: vision API error: %s", domain.ErrExtractionFailed, resp.Detail)
		}
		return nil, fmt.Errorf("%w: vision API error: status %d", domain.ErrExtractionFailed, httpResp.StatusCode())
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrExtractionFailed)
	}

	features := resp.Data[0].Embedding
	if len(features) != e.dimensions {
		return nil, fmt.Errorf("%w: vision API returned %d dimensions, expected %d",
			domain.ErrExtractionFailed, len(features), e.dimensions)
	}

	return &domain.AnalysisResult{
		Features:   features,
		Category:   PlaceholderCategory,
		Confidence: 1,
	}, nil
}

// Dimensions implements Extractor.
func (e *RemoteExtractor) Dimensions() int {
	return e.dimensions
}
