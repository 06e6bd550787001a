package api

import (
	"net/http"

	"contentflow/internal/config"
	"contentflow/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authCfg config.AuthConfig,
	ingestService service.IngestService,
	analyticsService service.AnalyticsService,
) {
	ingestHandler := NewIngestHandler(ingestService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)

	// Permissive CORS: the analytics view is consumed cross-origin.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(IdentityMiddleware(authCfg.Secret, authCfg.DefaultUser))
	{
		// POST /api/v1/events - object-created notification batches
		apiV1.POST("/events", ingestHandler.HandleBatch)

		// GET /api/v1/analytics - per-user analytics view
		apiV1.GET("/analytics", analyticsHandler.GetAnalytics)
	}
}
