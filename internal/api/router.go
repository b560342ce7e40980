package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/service"
)

// Keys under which the auth middleware stores the verified claims in the
// gin context
const (
	contextUserKey = "username"
	contextRoleKey = "role"
)

// HealthChecker reports whether the sheet store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, store HealthChecker, tokens *auth.TokenManager, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	attendanceHandler := NewAttendanceHandler(services, cfg, log)
	budgetHandler := NewBudgetHandler(services, log)
	soaHandler := NewSOAHandler(services, log)
	minutesHandler := NewMinutesHandler(services, log)
	receiptHandler := NewReceiptHandler(services, cfg, log)

	router.GET("/", rootBanner)
	router.GET("/health", healthCheck(store))

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(authMiddleware(tokens))
		{
			protected.GET("/auth/me", authHandler.Me)

			attendance := protected.Group("/attendance")
			{
				attendance.POST("", attendanceHandler.Submit)
				attendance.POST("/upload", attendanceHandler.Upload)
				attendance.GET("", attendanceHandler.ForDate)
				attendance.GET("/most-recent", attendanceHandler.MostRecent)
			}

			budget := protected.Group("/budget")
			{
				budget.POST("/generate", budgetHandler.Generate)
				budget.POST("/preview", budgetHandler.Preview)
				budget.POST("/telegram-send", budgetHandler.TelegramSend)
			}

			protected.POST("/soa/generate", soaHandler.Generate)

			minutes := protected.Group("/minutes")
			{
				minutes.POST("/preview", minutesHandler.Preview)
				minutes.POST("/generate", minutesHandler.Generate)
				minutes.GET("/members", minutesHandler.Members)
			}

			protected.POST("/receipts/process", receiptHandler.Process)
		}
	}

	return router
}

// rootBanner returns the service banner
func rootBanner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "TGYN Admin Portal API",
		"status":  "running",
	})
}

// healthCheck probes the sheet store
func healthCheck(store HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, 5*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "tgyn-admin-api",
		})
	}
}

// authMiddleware verifies the bearer token and stores the claims in the
// request context
func authMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication token"})
			return
		}

		c.Set(contextUserKey, claims.Subject)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
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

// corsMiddleware handles CORS for the configured origins
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
