package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced at the API boundary
var (
	// ErrUnsupportedFormat is returned for uploads that are not .xlsx,
	// .xls or .csv
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyInput is returned when a submission or parsed file carries
	// no usable attendance data
	ErrEmptyInput = errors.New("no attendance data found")

	// ErrDateNotFound is returned when no attendance column matches a
	// requested date
	ErrDateNotFound = errors.New("no attendance recorded for date")

	// ErrEmptyContent is returned when minutes generation is asked to work
	// from blank meeting notes
	ErrEmptyContent = errors.New("meeting content cannot be empty")

	// ErrInvalidCredentials is returned for failed logins
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAINotConfigured is returned when an operation needs Gemini but no
	// API key was configured
	ErrAINotConfigured = errors.New("AI extraction is not configured")

	// ErrTelegramNotConfigured is returned when an operation needs the
	// Telegram bot but no credentials were configured
	ErrTelegramNotConfigured = errors.New("telegram delivery is not configured")
)

// DuplicateKeyError reports two observation keys that collapse to the same
// member identity. It is detected before any write.
type DuplicateKeyError struct {
	First  string
	Second string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("attendance keys %q and %q refer to the same member", e.First, e.Second)
}
