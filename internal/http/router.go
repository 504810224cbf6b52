package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/climagination/climeval/internal/results"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(catalog *results.Catalog, resultsDir string) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(catalog, resultsDir)

	// API v1 routes.
	v1 := router.Group("/v1")
	runs := v1.Group("/runs")
	runs.GET("", handler.ListRuns)
	runs.GET("/:id", handler.GetRun)
	runs.GET("/:id/summary", handler.GetRunSummary)
	runs.GET("/:id/metrics/:name", handler.GetRunMetric)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
