package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/service"
)

// SearchIDHeader carries the id of the search that produced a response.
const SearchIDHeader = "X-Search-ID"

const (
	apiVersion       = "1.0.0"
	msgImageRequired = "Image data is required"
	msgSearchFailed  = "Failed to process image search"
)

// SearchHandler handles visual search endpoints.
type SearchHandler struct {
	searchService *service.SearchService
	timeout       time.Duration
}

// NewSearchHandler creates a new search handler. timeout bounds each search; zero
// leaves the request context alone.
func NewSearchHandler(searchService *service.SearchService, timeout time.Duration) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		timeout:       timeout,
	}
}

type searchBody struct {
	ImageData string           `json:"imageData"`
	Filters   *service.Filters `json:"filters,omitempty"`
}

// VisualSearch handles POST /api/search.
func (h *SearchHandler) VisualSearch(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(body.ImageData) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageRequired})
		return
	}

	req := &service.SearchRequest{ImageRef: body.ImageData}
	if body.Filters != nil {
		req.Filters = *body.Filters
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.searchService.Search(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSearchFailed})
		return
	}

	c.Header(SearchIDHeader, resp.SearchID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": newScoredViews(resp.Results),
		"total":   resp.Total,
	})
}

// Info handles GET /api/search.
func (h *SearchHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Visual Product Matcher API",
		"version": apiVersion,
		"endpoints": gin.H{
			"search":     "POST /api/search",
			"products":   "GET /api/v1/products",
			"product":    "GET /api/v1/products/:id",
			"categories": "GET /api/v1/categories",
		},
	})
}
