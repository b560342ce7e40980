package mocks

import (
	"context"
	"strings"

	"github.com/tgyn-admin-api/internal/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       []*models.User
	GetError    error
	UpdateError error
	// Updated maps worksheet row to the password written there
	Updated map[int]string
}

func NewMockUserRepository(users ...*models.User) *MockUserRepository {
	return &MockUserRepository{
		Users:   users,
		Updated: make(map[int]string),
	}
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Users, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, row int, password string) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Updated[row] = password
	return nil
}

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	Members   []*models.Member
	ListError error
}

func NewMockMemberRepository(members ...*models.Member) *MockMemberRepository {
	return &MockMemberRepository{Members: members}
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*models.Member, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Members, nil
}

// WriteCall records one cell write against the fake grid
type WriteCall struct {
	Row   int
	Col   int
	Value string
}

// MockAttendanceRepository is a write-through fake over an in-memory grid.
// Writes land in the grid so follow-up reads observe them, mimicking the
// live worksheet.
type MockAttendanceRepository struct {
	Grid       [][]string
	ReadError  error
	WriteError error
	ReadCalls  int
	WriteCalls []WriteCall
}

func NewMockAttendanceRepository(grid [][]string) *MockAttendanceRepository {
	return &MockAttendanceRepository{Grid: grid}
}

func (m *MockAttendanceRepository) ReadGrid(ctx context.Context) ([][]string, error) {
	m.ReadCalls++
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	snapshot := make([][]string, len(m.Grid))
	for i, row := range m.Grid {
		snapshot[i] = append([]string(nil), row...)
	}
	return snapshot, nil
}

func (m *MockAttendanceRepository) WriteCell(ctx context.Context, row, col int, value string) error {
	if m.WriteError != nil {
		return m.WriteError
	}
	for len(m.Grid) <= row {
		m.Grid = append(m.Grid, []string{})
	}
	for len(m.Grid[row]) <= col {
		m.Grid[row] = append(m.Grid[row], "")
	}
	m.Grid[row][col] = value
	m.WriteCalls = append(m.WriteCalls, WriteCall{Row: row, Col: col, Value: value})
	return nil
}

func (m *MockAttendanceRepository) AppendHeader(ctx context.Context, col int, value string) error {
	return m.WriteCell(ctx, 0, col, value)
}

// Cell returns the current grid value at (row, col), or "" when the cell
// is outside the grid
func (m *MockAttendanceRepository) Cell(row, col int) string {
	if row >= len(m.Grid) || col >= len(m.Grid[row]) {
		return ""
	}
	return m.Grid[row][col]
}

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	Events      []*models.EventRecord
	Budgets     []*models.BudgetRecord
	SOAs        []*models.SOARecord
	CreateError error
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{}
}

func (m *MockRecordRepository) CreateEvent(ctx context.Context, event *models.EventRecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockRecordRepository) CreateBudget(ctx context.Context, budget *models.BudgetRecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Budgets = append(m.Budgets, budget)
	return nil
}

func (m *MockRecordRepository) CreateSOA(ctx context.Context, soa *models.SOARecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.SOAs = append(m.SOAs, soa)
	return nil
}
