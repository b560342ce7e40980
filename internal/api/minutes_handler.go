package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
)

// MinutesHandler handles meeting-minutes endpoints
type MinutesHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMinutesHandler creates a new MinutesHandler
func NewMinutesHandler(services *service.Services, log zerolog.Logger) *MinutesHandler {
	return &MinutesHandler{
		services: services,
		log:      log.With().Str("handler", "minutes").Logger(),
	}
}

// Preview handles POST /api/v1/minutes/preview. It returns the extracted
// agenda without rendering a document.
func (h *MinutesHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	content := strings.TrimSpace(c.PostForm("meeting_content"))
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Meeting content is required"})
		return
	}

	extraction := h.services.Minutes.Extract(ctx, content)

	preview := content
	if r := []rune(content); len(r) > 500 {
		preview = string(r[:500]) + "..."
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"extracted_data": extraction,
		"preview_text":   preview,
	})
}

// Generate handles POST /api/v1/minutes/generate and streams the document
func (h *MinutesHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.MinutesRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Meeting content is required"})
		return
	}
	if req.Title == "" {
		req.Title = "Corporate Board Meeting"
	}

	doc, err := h.services.Minutes.Generate(ctx, &req)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to generate meeting minutes")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// Members handles GET /api/v1/minutes/members
func (h *MinutesHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()

	members, err := h.services.Member.List(ctx)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to load members")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"members": members,
	})
}
