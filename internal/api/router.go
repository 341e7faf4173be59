// Package api wires HTTP routes to the search service.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vismatch/internal/api/handler"
	"github.com/timmy/vismatch/internal/api/middleware"
	"github.com/timmy/vismatch/internal/logger"
	"github.com/timmy/vismatch/internal/service"
)

// RouterConfig holds HTTP-layer settings.
type RouterConfig struct {
	Mode          string
	CORS          middleware.CORSConfig
	SearchTimeout time.Duration
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(searchService *service.SearchService, cfg RouterConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(searchService)
	searchHandler := handler.NewSearchHandler(searchService, cfg.SearchTimeout)
	productHandler := handler.NewProductHandler(searchService)

	r.GET("/health", healthHandler.Health)

	r.POST("/api/search", searchHandler.VisualSearch)
	r.GET("/api/search", searchHandler.Info)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/categories", productHandler.GetCategories)
	}

	return r
}
