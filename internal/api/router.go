package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/service"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether the metadata store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. imageDir, the news
// variant's storage directory, is served read-only under the configured
// static prefix. db may be nil.
func NewRouter(services *service.Services, cfg *config.Config, imageDir string, db HealthChecker, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	newsHandler := NewNewsHandler(services, cfg, log)
	conventionHandler := NewConventionHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Only news images; convention documents go through the download route
	router.Static(cfg.Storage.StaticPrefix, imageDir)

	news := router.Group("/news")
	{
		news.POST("", newsHandler.Create)
		news.GET("", newsHandler.List)
		news.GET("/:id", newsHandler.Get)
		news.DELETE("/:id", newsHandler.Delete)
	}

	conventions := router.Group("/conventions")
	{
		conventions.POST("", conventionHandler.Create)
		conventions.GET("", conventionHandler.List)
		conventions.GET("/download/:fileName", conventionHandler.Download)
		conventions.DELETE("/:id", conventionHandler.Delete)
	}

	return router
}

// healthCheck returns the health status, including the database when one is
// configured
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "siamt-api",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()

			database := gin.H{"status": "up"}
			if err := db.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				database = gin.H{"status": "down", "error": err.Error()}
			}
			if s, ok := db.(interface{ Stats() sql.DBStats }); ok {
				stats := s.Stats()
				database["open_connections"] = stats.OpenConnections
				database["in_use"] = stats.InUse
				database["idle"] = stats.Idle
			}
			body["database"] = database
		}

		c.JSON(status, body)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": internalErrorMessage,
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Int("bytes", c.Writer.Size()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
