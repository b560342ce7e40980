package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Google Sheets configuration
	Sheets SheetsConfig

	// Authentication configuration
	Auth AuthConfig

	// Gemini AI configuration
	Gemini GeminiConfig

	// Telegram delivery configuration
	Telegram TelegramConfig

	// Upload configuration
	Upload UploadConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// SheetsConfig holds Google Sheets access settings. The portal spreadsheet
// stores users and generated-document records; members and attendance each
// live in their own spreadsheet.
type SheetsConfig struct {
	CredentialsFile string
	PortalURL       string
	MembersURL      string
	AttendanceURL   string
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

// GeminiConfig holds Gemini API settings
type GeminiConfig struct {
	APIKey  string
	Timeout time.Duration
}

// TelegramConfig holds Telegram bot settings
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// UploadConfig holds file upload settings
type UploadConfig struct {
	MaxUploadSize int64 // in bytes
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getListEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			PortalURL:       getEnv("GOOGLE_SPREADSHEET_URL", ""),
			MembersURL:      getEnv("MEMBERS_SPREADSHEET_URL", ""),
			AttendanceURL:   getEnv("ATTENDANCE_SPREADSHEET_URL", ""),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", ""),
			TokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 30*time.Minute),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getDurationEnv("GEMINI_TIMEOUT", 60*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			Timeout:  getDurationEnv("TELEGRAM_TIMEOUT", 30*time.Second),
		},
		Upload: UploadConfig{
			MaxUploadSize: getInt64Env("MAX_UPLOAD_SIZE", 20*1024*1024), // 20MB
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.Sheets.PortalURL == "" {
		return fmt.Errorf("GOOGLE_SPREADSHEET_URL is required")
	}
	if c.Sheets.MembersURL == "" {
		return fmt.Errorf("MEMBERS_SPREADSHEET_URL is required")
	}
	if c.Sheets.AttendanceURL == "" {
		return fmt.Errorf("ATTENDANCE_SPREADSHEET_URL is required")
	}
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
