package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/config"
)

// ErrNotConfigured is returned when bot token or chat ID are missing
var ErrNotConfigured = errors.New("telegram bot not configured")

// apiResponse is the envelope every Bot API method responds with
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Client talks to the Telegram Bot API for a single chat
type Client struct {
	baseURL    string
	chatID     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a Telegram client. Without credentials it returns
// ErrNotConfigured so callers can degrade instead of failing startup.
func New(cfg *config.TelegramConfig, log zerolog.Logger) (*Client, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, ErrNotConfigured
	}

	return &Client{
		baseURL:    fmt.Sprintf("https://api.telegram.org/bot%s", cfg.BotToken),
		chatID:     cfg.ChatID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "telegram").Logger(),
	}, nil
}

// SendDocument uploads a file to the chat with a caption
func (c *Client) SendDocument(ctx context.Context, filename string, document []byte, caption string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", c.chatID); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
	}
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendDocument", &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := c.do(req); err != nil {
		return err
	}

	c.log.Info().Str("filename", filename).Msg("Document sent to Telegram")
	return nil
}

// SendPoll posts a public single-answer poll to the chat
func (c *Client) SendPoll(ctx context.Context, question string, options []string) error {
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to encode poll options: %w", err)
	}

	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("question", question)
	form.Set("options", string(encoded))
	form.Set("is_anonymous", "false")
	form.Set("allows_multiple_answers", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendPoll", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.do(req); err != nil {
		return err
	}

	c.log.Info().Str("question", question).Msg("Poll sent to Telegram")
	return nil
}

// do executes a Bot API request and unwraps the response envelope
func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return fmt.Errorf("unexpected telegram response (status %d)", resp.StatusCode)
	}
	if !api.OK {
		if api.Description == "" {
			api.Description = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("telegram API error: %s", api.Description)
	}
	return nil
}
