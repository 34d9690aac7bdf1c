package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(timeoutMiddleware(cfg.Server.WriteTimeout))

	// Handlers
	postHandler := NewPostHandler(services, log)
	automationHandler := NewAutomationHandler(services, log)
	personaHandler := NewPersonaHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services, log))

	// API v1
	v1 := router.Group("/v1")
	{
		posts := v1.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.POST("", postHandler.CreatePost)
			posts.GET("/:post_id", postHandler.GetPost)
			posts.POST("/:post_id/comments", postHandler.SubmitComment)
		}

		rules := v1.Group("/rules")
		{
			rules.GET("", automationHandler.ListRules)
			rules.POST("", automationHandler.CreateRule)
			rules.PUT("/:rule_id", automationHandler.UpdateRule)
			rules.DELETE("/:rule_id", automationHandler.DeleteRule)
			rules.POST("/:rule_id/toggle", automationHandler.ToggleRule)
		}

		assets := v1.Group("/assets")
		{
			assets.GET("", automationHandler.ListAssets)
			assets.POST("", automationHandler.CreateAsset)
			assets.PUT("/:asset_id", automationHandler.UpdateAsset)
			assets.DELETE("/:asset_id", automationHandler.DeleteAsset)
		}

		v1.GET("/persona", personaHandler.GetPersona)
		v1.PUT("/persona", personaHandler.UpdatePersona)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "engagemate-api",
	})
}

// metricsHandler returns automation counters
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.Post.Stats(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to collect stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
			return
		}

		deliveries := gin.H{}
		for _, asset := range services.Settings.ListAssets() {
			deliveries[asset.ID] = asset.DeliveryCount
		}

		c.JSON(http.StatusOK, gin.H{
			"database":   stats,
			"deliveries": deliveries,
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	}
}

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var validationErr *service.ValidationFailedError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"errors": validationErr.Errors,
		})
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
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
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware bounds the request context so inline generation cannot
// outlive the server write timeout
func timeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
