package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/service"
	"github.com/tgyn-admin-api/internal/validation"
)

// ReceiptHandler handles receipt extraction endpoints
type ReceiptHandler struct {
	services  *service.Services
	cfg       *config.Config
	validator *validation.Validator
	log       zerolog.Logger
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		services:  services,
		cfg:       cfg,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "receipt").Logger(),
	}
}

// Process handles POST /api/v1/receipts/process. The multipart form
// carries one or more photos under "images".
func (h *ReceiptHandler) Process(c *gin.Context) {
	ctx := c.Request.Context()

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with images is required"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
		return
	}

	images := make([]service.ReceiptImage, 0, len(files))
	for _, header := range files {
		if errs := h.validator.ValidateReceiptImage(header.Filename, header.Size, h.cfg.Upload.MaxUploadSize); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message})
			return
		}

		file, err := header.Open()
		if err != nil {
			h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to open uploaded image")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded image"})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read uploaded image")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded image"})
			return
		}

		images = append(images, service.ReceiptImage{Filename: header.Filename, Data: data})
	}

	result, err := h.services.Receipt.Process(ctx, images)
	if err != nil {
		respondServiceError(c, h.log, err, "failed to process receipts")
		return
	}

	c.JSON(http.StatusOK, result)
}
