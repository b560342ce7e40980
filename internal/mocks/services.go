package mocks

import (
	"context"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	Response *models.LoginResponse
	Err      error
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// MockMemberService is a mock implementation of MemberService
type MockMemberService struct {
	Members []*models.Member
	Err     error
}

func (m *MockMemberService) List(ctx context.Context) ([]*models.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Members, nil
}

// MockAttendanceService is a mock implementation of AttendanceService
type MockAttendanceService struct {
	SubmitError error
	// Submitted maps date to the observation passed for it
	Submitted   map[string]map[string]string
	ParseResult map[string]string
	ParseError  error
	Record      *models.AttendanceResponse
	RecordError error
}

func (m *MockAttendanceService) Submit(ctx context.Context, date string, observation map[string]string) error {
	if m.SubmitError != nil {
		return m.SubmitError
	}
	if m.Submitted == nil {
		m.Submitted = make(map[string]map[string]string)
	}
	m.Submitted[date] = observation
	return nil
}

func (m *MockAttendanceService) ParseFile(data []byte, filename string) (map[string]string, error) {
	if m.ParseError != nil {
		return nil, m.ParseError
	}
	return m.ParseResult, nil
}

func (m *MockAttendanceService) ForDate(ctx context.Context, date string) (*models.AttendanceResponse, error) {
	if m.RecordError != nil {
		return nil, m.RecordError
	}
	return m.Record, nil
}

func (m *MockAttendanceService) MostRecent(ctx context.Context) (*models.AttendanceResponse, error) {
	if m.RecordError != nil {
		return nil, m.RecordError
	}
	return m.Record, nil
}

// MockBudgetService is a mock implementation of BudgetService
type MockBudgetService struct {
	PreviewResult *models.BudgetPreview
	Doc           *service.Document
	Err           error
	CreatedBy     string
}

func (m *MockBudgetService) Preview(req *models.BudgetRequest) *models.BudgetPreview {
	return m.PreviewResult
}

func (m *MockBudgetService) Generate(ctx context.Context, req *models.BudgetRequest, createdBy string) (*service.Document, error) {
	m.CreatedBy = createdBy
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}

func (m *MockBudgetService) SendToTelegram(ctx context.Context, req *models.BudgetRequest, createdBy string) (*service.Document, error) {
	m.CreatedBy = createdBy
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}

// MockSOAService is a mock implementation of SOAService
type MockSOAService struct {
	Doc       *service.Document
	Err       error
	CreatedBy string
}

func (m *MockSOAService) Generate(ctx context.Context, req *models.SOARequest, createdBy string) (*service.Document, error) {
	m.CreatedBy = createdBy
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}

// MockMinutesService is a mock implementation of MinutesService
type MockMinutesService struct {
	Extraction *models.MinutesExtraction
	Doc        *service.Document
	Err        error
	// LastRequest records the request passed to Generate
	LastRequest *models.MinutesRequest
}

func (m *MockMinutesService) Extract(ctx context.Context, content string) *models.MinutesExtraction {
	return m.Extraction
}

func (m *MockMinutesService) Generate(ctx context.Context, req *models.MinutesRequest) (*service.Document, error) {
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}

// MockReceiptService is a mock implementation of ReceiptService
type MockReceiptService struct {
	Result *service.ReceiptResult
	Err    error
	Images int
}

func (m *MockReceiptService) Process(ctx context.Context, images []service.ReceiptImage) (*service.ReceiptResult, error) {
	m.Images = len(images)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// MockContentGenerator is a mock implementation of ContentGenerator
type MockContentGenerator struct {
	TextResponse   string
	TextError      error
	VisionResponse string
	VisionError    error
	// VisionFunc, when set, overrides the fixed vision response per call
	VisionFunc  func(prompt string, image []byte, mimeType string) (string, error)
	TextPrompts []string
	VisionCalls int
}

func (m *MockContentGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.TextPrompts = append(m.TextPrompts, prompt)
	if m.TextError != nil {
		return "", m.TextError
	}
	return m.TextResponse, nil
}

func (m *MockContentGenerator) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	m.VisionCalls++
	if m.VisionFunc != nil {
		return m.VisionFunc(prompt, image, mimeType)
	}
	if m.VisionError != nil {
		return "", m.VisionError
	}
	return m.VisionResponse, nil
}

// SentDocument records one SendDocument call
type SentDocument struct {
	Filename string
	Caption  string
	Size     int
}

// SentPoll records one SendPoll call
type SentPoll struct {
	Question string
	Options  []string
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	DocumentError error
	PollError     error
	Documents     []SentDocument
	Polls         []SentPoll
}

func (m *MockNotifier) SendDocument(ctx context.Context, filename string, document []byte, caption string) error {
	if m.DocumentError != nil {
		return m.DocumentError
	}
	m.Documents = append(m.Documents, SentDocument{Filename: filename, Caption: caption, Size: len(document)})
	return nil
}

func (m *MockNotifier) SendPoll(ctx context.Context, question string, options []string) error {
	if m.PollError != nil {
		return m.PollError
	}
	m.Polls = append(m.Polls, SentPoll{Question: question, Options: options})
	return nil
}
