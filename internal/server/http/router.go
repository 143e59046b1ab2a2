// Package http exposes the translation engine over a JSON API.
package http

import (
	"github.com/gin-gonic/gin"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/observability"
	"goalbridge/internal/shared/logging"
)

// RouterDeps wires NewRouter. Tracer, Metrics and Health may be nil.
type RouterDeps struct {
	Pool           *engine.Pool
	Tracer         *observability.TracerProvider
	Metrics        *observability.MetricsCollector
	Logger         logging.Logger
	Health         HealthChecker
	AllowedOrigins []string
	RateLimit      RateLimitConfig
	Debug          bool
}

// NewRouter builds the gin engine with middleware and every API route.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.OrNop(deps.Logger)
	handler := NewHandler(deps.Pool, logger)

	router := gin.New()
	router.Use(
		RecoveryMiddleware(logger),
		RequestContextMiddleware(),
		CORSMiddleware(deps.AllowedOrigins),
		ObservabilityMiddleware(deps.Tracer, deps.Metrics, logger),
	)

	router.GET("/health", handler.healthHandler(deps.Health))
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	api := router.Group("/api/v1")
	api.Use(RateLimitMiddleware(deps.RateLimit))
	{
		api.GET("/frameworks", handler.HandleFrameworks)
		api.POST("/translate", handler.HandleTranslate)
		api.POST("/translate/bulk", handler.HandleBulkTranslate)
		api.POST("/translate/preview", handler.HandlePreview)
		api.POST("/translate/hybrid", handler.HandleHybrid)
		api.POST("/validate", handler.HandleValidate)
		api.POST("/compatibility", handler.HandleCompatibility)
		api.GET("/organizations/:org/recommendation", handler.HandleRecommendation)
	}
	return router
}
