package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/gemini"
	"github.com/tgyn-admin-api/internal/service"
)

// respondServiceError maps a service error onto the HTTP taxonomy. Unmapped
// errors are logged and answered with the generic fallback message.
func respondServiceError(c *gin.Context, log zerolog.Logger, err error, fallback string) {
	var dup *service.DuplicateKeyError

	switch {
	case errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, service.ErrEmptyContent),
		errors.As(err, &dup):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAINotConfigured),
		errors.Is(err, service.ErrTelegramNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case gemini.IsQuotaError(err):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Gemini API quota exceeded. Please wait a few minutes and try again, or check your API billing.",
		})
	default:
		log.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
