package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

// ContentGenerator is the slice of the Gemini client the services consume
type ContentGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Notifier is the slice of the Telegram client the budget service consumes
type Notifier interface {
	SendDocument(ctx context.Context, filename string, document []byte, caption string) error
	SendPoll(ctx context.Context, question string, options []string) error
}

// Document is a generated file ready to stream to the client
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReceiptImage is one uploaded receipt photo
type ReceiptImage struct {
	Filename string
	Data     []byte
}

// ReceiptResult is the combined outcome of processing a batch of receipts
type ReceiptResult struct {
	Income      []models.StandardizedItem `json:"income"`
	Expenditure []models.StandardizedItem `json:"expenditure"`
	Processed   int                       `json:"processed"`
	Skipped     int                       `json:"skipped"`
}

// AuthService defines the interface for authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// MemberService defines the interface for roster reads
type MemberService interface {
	List(ctx context.Context) ([]*models.Member, error)
}

// AttendanceService defines the interface for attendance operations
type AttendanceService interface {
	Submit(ctx context.Context, date string, observation map[string]string) error
	ParseFile(data []byte, filename string) (map[string]string, error)
	ForDate(ctx context.Context, date string) (*models.AttendanceResponse, error)
	MostRecent(ctx context.Context) (*models.AttendanceResponse, error)
}

// BudgetService defines the interface for budget documents. SendToTelegram
// returns the delivered document so callers can report its filename.
type BudgetService interface {
	Preview(req *models.BudgetRequest) *models.BudgetPreview
	Generate(ctx context.Context, req *models.BudgetRequest, createdBy string) (*Document, error)
	SendToTelegram(ctx context.Context, req *models.BudgetRequest, createdBy string) (*Document, error)
}

// SOAService defines the interface for statements of accounts
type SOAService interface {
	Generate(ctx context.Context, req *models.SOARequest, createdBy string) (*Document, error)
}

// MinutesService defines the interface for meeting minutes. Extract never
// fails; without a usable AI response it returns a fallback structure built
// from the raw content.
type MinutesService interface {
	Extract(ctx context.Context, content string) *models.MinutesExtraction
	Generate(ctx context.Context, req *models.MinutesRequest) (*Document, error)
}

// ReceiptService defines the interface for receipt extraction
type ReceiptService interface {
	Process(ctx context.Context, images []ReceiptImage) (*ReceiptResult, error)
}

// Services holds all service interfaces
type Services struct {
	Auth       AuthService
	Member     MemberService
	Attendance AttendanceService
	Budget     BudgetService
	SOA        SOAService
	Minutes    MinutesService
	Receipt    ReceiptService
}

// NewServices creates all services. The generator and notifier may be nil
// when their credentials are not configured; the dependent operations then
// fail individually instead of blocking startup.
func NewServices(repos *repository.Repositories, tokens *auth.TokenManager, generator ContentGenerator, notifier Notifier, log zerolog.Logger) *Services {
	attendanceSvc := newAttendanceService(repos.Attendance, log)

	return &Services{
		Auth:       newAuthService(repos.User, tokens, log),
		Member:     newMemberService(repos.Member, log),
		Attendance: attendanceSvc,
		Budget:     newBudgetService(repos.Record, notifier, log),
		SOA:        newSOAService(repos.Record, log),
		Minutes:    newMinutesService(repos.Member, attendanceSvc, generator, log),
		Receipt:    newReceiptService(generator, log),
	}
}
