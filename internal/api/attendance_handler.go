package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
	"github.com/tgyn-admin-api/internal/validation"
)

// AttendanceHandler handles attendance endpoints
type AttendanceHandler struct {
	services  *service.Services
	cfg       *config.Config
	validator *validation.Validator
	log       zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		services:  services,
		cfg:       cfg,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "attendance").Logger(),
	}
}

// Submit handles POST /api/v1/attendance
func (h *AttendanceHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and attendance are required"})
		return
	}

	if err := h.services.Attendance.Submit(ctx, req.Date, req.Attendance); err != nil {
		respondServiceError(c, h.log, err, "failed to submit attendance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Attendance submitted successfully",
	})
}

// Upload handles POST /api/v1/attendance/upload. The multipart form carries
// the workbook or CSV under "file" and the target date under "date".
func (h *AttendanceHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	date := c.PostForm("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if errs := h.validator.ValidateAttendanceFile(header.Filename, header.Size, h.cfg.Upload.MaxUploadSize); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	parsed, err := h.services.Attendance.ParseFile(data, header.Filename)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to parse attendance file")
		return
	}

	if err := h.services.Attendance.Submit(ctx, date, parsed); err != nil {
		respondServiceError(c, h.log, err, "failed to submit attendance")
		return
	}

	h.log.Info().
		Str("date", date).
		Str("file", header.Filename).
		Int("members", len(parsed)).
		Msg("Attendance file processed")

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         fmt.Sprintf("Attendance uploaded successfully. Processed %d members.", len(parsed)),
		"processed_count": len(parsed),
		"attendance":      parsed,
	})
}

// ForDate handles GET /api/v1/attendance?date=...
func (h *AttendanceHandler) ForDate(c *gin.Context) {
	ctx := c.Request.Context()

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	resp, err := h.services.Attendance.ForDate(ctx, date)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to read attendance")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MostRecent handles GET /api/v1/attendance/most-recent
func (h *AttendanceHandler) MostRecent(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.services.Attendance.MostRecent(ctx)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to read attendance")
		return
	}

	c.JSON(http.StatusOK, resp)
}
