package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vismatch/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	searchService *service.SearchService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(searchService *service.SearchService) *HealthHandler {
	return &HealthHandler{searchService: searchService}
}

// Health reports liveness and the size of the loaded catalog.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"products": h.searchService.CatalogSize(),
	})
}
