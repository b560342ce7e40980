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

// BudgetHandler handles budget endpoints
type BudgetHandler struct {
	services  *service.Services
	validator *validation.Validator
	log       zerolog.Logger
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(services *service.Services, log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{
		services:  services,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "budget").Logger(),
	}
}

func (h *BudgetHandler) bind(c *gin.Context) (*models.BudgetRequest, bool) {
	var req models.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_name is required"})
		return nil, false
	}
	if errs := h.validator.ValidateBudgetRequest(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "details": errs})
		return nil, false
	}
	return &req, true
}

// Generate handles POST /api/v1/budget/generate and streams the workbook
func (h *BudgetHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.bind(c)
	if !ok {
		return
	}

	doc, err := h.services.Budget.Generate(ctx, req, c.GetString(contextUserKey))
	if err != nil {
		respondServiceError(c, h.log, err, "failed to generate budget")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// Preview handles POST /api/v1/budget/preview
func (h *BudgetHandler) Preview(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.services.Budget.Preview(req))
}

// TelegramSend handles POST /api/v1/budget/telegram-send
func (h *BudgetHandler) TelegramSend(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.bind(c)
	if !ok {
		return
	}

	doc, err := h.services.Budget.SendToTelegram(ctx, req, c.GetString(contextUserKey))
	if err != nil {
		respondServiceError(c, h.log, err, "failed to send budget to telegram")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Budget document and approval poll sent to Telegram successfully",
		"filename": doc.Filename,
	})
}
