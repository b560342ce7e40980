package repository

import (
	"context"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/sheetdb"
)

// SheetAPI is the subset of the sheetdb client the repositories use.
// Narrowing it here keeps the implementations testable against a fake.
type SheetAPI interface {
	ReadSheet(ctx context.Context, spreadsheetID, title string) ([][]string, error)
	UpdateCell(ctx context.Context, spreadsheetID, title string, row, col int, value string) error
	AppendRow(ctx context.Context, spreadsheetID, title string, values []string) error
	SheetTitle(ctx context.Context, spreadsheetID string, index int) (string, error)
}

// UserRepository defines the interface for staff account operations
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdatePassword(ctx context.Context, row int, password string) error
}

// MemberRepository defines the interface for roster reads
type MemberRepository interface {
	List(ctx context.Context) ([]*models.Member, error)
}

// AttendanceRepository provides cell-level access to the attendance table.
// Rows and columns are zero-based; implementations translate to the wire.
type AttendanceRepository interface {
	ReadGrid(ctx context.Context) ([][]string, error)
	WriteCell(ctx context.Context, row, col int, value string) error
	AppendHeader(ctx context.Context, col int, value string) error
}

// RecordRepository appends generated-document records to the portal sheet
type RecordRepository interface {
	CreateEvent(ctx context.Context, event *models.EventRecord) error
	CreateBudget(ctx context.Context, budget *models.BudgetRecord) error
	CreateSOA(ctx context.Context, soa *models.SOARecord) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	User       UserRepository
	Member     MemberRepository
	Attendance AttendanceRepository
	Record     RecordRepository
}

// New creates all repositories over the sheet store
func New(client *sheetdb.Client) *Repositories {
	return &Repositories{
		User:       NewUserRepo(client, client.PortalID),
		Member:     NewMemberRepo(client, client.MembersID),
		Attendance: NewAttendanceRepo(client, client.AttendanceID),
		Record:     NewRecordRepo(client, client.PortalID),
	}
}

// cell returns the value at idx, tolerating the ragged rows the Sheets API
// produces when trailing cells are empty
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
