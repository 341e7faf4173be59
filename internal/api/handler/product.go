package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/service"
)

// ProductHandler serves catalog browsing endpoints.
type ProductHandler struct {
	searchService *service.SearchService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(searchService *service.SearchService) *ProductHandler {
	return &ProductHandler{searchService: searchService}
}

// ListProducts handles GET /api/v1/products?category=&q=.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products := h.searchService.ListProducts(c.Request.Context(), c.Query("category"), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"products": newProductViews(products),
		"total":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.searchService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}
	c.JSON(http.StatusOK, newProductView(product))
}

// GetCategories handles GET /api/v1/categories.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories := h.searchService.Categories()
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}
