package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/tgyn-admin-api/internal/config"
)

// Model fallback chains. Newer models are tried first; quota-limited or
// unavailable models fall through to the stable ones.
var (
	textModels = []string{
		"gemini-2.0-flash-exp",
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
	visionModels = []string{
		"gemini-2.5-flash",
		"gemini-2.0-flash-exp",
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
)

// ErrNotConfigured is returned when no API key is configured
var ErrNotConfigured = errors.New("gemini API key not configured")

// Client generates content through the Gemini API with model fallback
type Client struct {
	client  *genai.Client
	log     zerolog.Logger
	timeout time.Duration
}

// New creates a Gemini client. Without an API key it returns
// ErrNotConfigured so callers can degrade instead of failing startup.
func New(ctx context.Context, cfg *config.GeminiConfig, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		log:     log.With().Str("component", "gemini").Logger(),
		timeout: cfg.Timeout,
	}, nil
}

// GenerateText runs a text prompt through the text model chain
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.generate(ctx, textModels, contents)
}

// GenerateVision runs a prompt with an attached image through the vision
// model chain
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return c.generate(ctx, visionModels, contents)
}

func (c *Client) generate(ctx context.Context, models []string, contents []*genai.Content) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for _, model := range models {
		resp, err := c.client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			c.log.Warn().Err(err).Str("model", model).Msg("Model call failed, trying next")
			lastErr = err
			continue
		}

		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("model %s returned an empty response", model)
			continue
		}
		return text, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no models configured")
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

// IsQuotaError reports whether an error looks like API quota exhaustion
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}
