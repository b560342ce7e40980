package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/config"
)

func TestNew_NotConfigured(t *testing.T) {
	cfg := &config.GeminiConfig{APIKey: "", Timeout: 30 * time.Second}

	client, err := New(context.Background(), cfg, zerolog.Nop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when no API key is set")
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"http 429", errors.New("googleapi: Error 429: Too Many Requests"), true},
		{"quota exceeded", errors.New("Quota exceeded for quota metric 'GenerateContent requests'"), true},
		{"resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED desc = try again later"), true},
		{"wrapped quota error", fmt.Errorf("all models failed: %w", errors.New("quota exceeded")), true},
		{"auth failure", errors.New("API key not valid"), false},
		{"timeout", context.DeadlineExceeded, false},
		{"empty message", errors.New(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestModelChains(t *testing.T) {
	if len(textModels) == 0 || len(visionModels) == 0 {
		t.Fatal("Model chains must not be empty")
	}
	if textModels[len(textModels)-1] != "gemini-1.5-flash" {
		t.Errorf("Expected gemini-1.5-flash as the final text fallback, got %s", textModels[len(textModels)-1])
	}
	if visionModels[0] != "gemini-2.5-flash" {
		t.Errorf("Expected gemini-2.5-flash as the preferred vision model, got %s", visionModels[0])
	}
}
