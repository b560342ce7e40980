package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
	"github.com/tgyn-admin-api/internal/validation"
)

// SOAHandler handles statement-of-accounts endpoints
type SOAHandler struct {
	services  *service.Services
	validator *validation.Validator
	log       zerolog.Logger
}

// NewSOAHandler creates a new SOAHandler
func NewSOAHandler(services *service.Services, log zerolog.Logger) *SOAHandler {
	return &SOAHandler{
		services:  services,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "soa").Logger(),
	}
}

// Generate handles POST /api/v1/soa/generate and streams the workbook
func (h *SOAHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.SOARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_name is required"})
		return
	}
	if errs := h.validator.ValidateSOARequest(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "details": errs})
		return
	}

	doc, err := h.services.SOA.Generate(ctx, &req, c.GetString(contextUserKey))
	if err != nil {
		respondServiceError(c, h.log, err, "failed to generate statement of accounts")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
