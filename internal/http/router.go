// Package http exposes the grid service over a JSON HTTP API.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.ngs.io/pp-grid/internal/config"
	"go.ngs.io/pp-grid/internal/usecase"
)

// SetupRouter creates and configures the Gin router. A nil gatherer disables
// the /metrics endpoint.
func SetupRouter(gridService *usecase.GridService, cfg *config.Config, gatherer prometheus.Gatherer) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	// Default to allow all origins if none are configured.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(gridService)

	// API v1 routes.
	v1 := router.Group("/v1")
	grids := v1.Group("/grids")
	grids.GET("", handler.ListGrids)
	grids.GET("/:name", handler.GetGrid)
	grids.POST("/describe", handler.Describe)
	grids.POST("/nearest", handler.Nearest)
	grids.POST("/lonlatbox", handler.LonLatBox)
	grids.POST("/interpolate", handler.Interpolate)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	if cfg.MetricsEnabled && gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
