package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"goalbridge/internal/observability"
	"goalbridge/internal/shared/logging"
)

const (
	headerRequestID      = "X-Request-ID"
	headerOrganizationID = "X-Organization-ID"
)

// RequestContextMiddleware assigns a request ID and carries it, with the
// organization header, on the request context.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)
		ctx := observability.ContextWithRequestID(c.Request.Context(), requestID)
		if org := strings.TrimSpace(c.GetHeader(headerOrganizationID)); org != "" {
			ctx = observability.ContextWithOrganizationID(ctx, org)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ObservabilityMiddleware instruments requests with tracing, metrics, and latency logging.
func ObservabilityMiddleware(tracer *observability.TracerProvider, metrics *observability.MetricsCollector, latencyLogger logging.Logger) gin.HandlerFunc {
	latencyLogger = logging.OrNop(latencyLogger)
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.StartSpan(c.Request.Context(), observability.SpanHTTPRequest,
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		latency := time.Since(start)
		metrics.RecordHTTPRequest(ctx, c.Request.Method, route, status, latency)
		latencyLogger.Info("route=%s method=%s status=%d latency_ms=%.2f request_id=%s",
			route, c.Request.Method, status, float64(latency.Microseconds())/1000.0,
			observability.RequestIDFromContext(ctx))
	}
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, apiErrorResponse{Error: "internal server error"})
	})
}

// CORSMiddleware allows the configured origins, or every origin when none
// are configured.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", headerRequestID, headerOrganizationID}
	cfg.ExposeHeaders = []string{headerRequestID}
	return cors.New(cfg)
}
