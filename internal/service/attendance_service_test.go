package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/config"
	"github.com/tgyn-admin-api/internal/mocks"
	"github.com/tgyn-admin-api/internal/repository"
	"github.com/tgyn-admin-api/internal/service"
)

// testEnv bundles the mock repositories behind a fully wired Services so
// tests exercise the same construction path as main.
type testEnv struct {
	users      *mocks.MockUserRepository
	members    *mocks.MockMemberRepository
	attendance *mocks.MockAttendanceRepository
	records    *mocks.MockRecordRepository
	services   *service.Services
}

func newTestEnv(grid [][]string, generator service.ContentGenerator, notifier service.Notifier) *testEnv {
	env := &testEnv{
		users:      mocks.NewMockUserRepository(),
		members:    mocks.NewMockMemberRepository(),
		attendance: mocks.NewMockAttendanceRepository(grid),
		records:    mocks.NewMockRecordRepository(),
	}
	repos := &repository.Repositories{
		User:       env.users,
		Member:     env.members,
		Attendance: env.attendance,
		Record:     env.records,
	}
	tokens := auth.NewTokenManager(&config.AuthConfig{SecretKey: "test-secret", TokenTTL: time.Minute})
	env.services = service.NewServices(repos, tokens, generator, notifier, zerolog.Nop())
	return env
}

func attendanceGrid() [][]string {
	return [][]string{
		{"", "Name", "2025-01-03"},
		{"", "Alice Tan", "Present"},
		{"", "Bob Ng", "Not Present"},
	}
}

func TestAttendanceService_SubmitCreatesDateColumn(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-10", map[string]string{
		"Alice Tan": "Present",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := env.attendance.Cell(0, 3); got != "2025-01-10" {
		t.Errorf("Expected new header cell 2025-01-10, got %q", got)
	}
	if got := env.attendance.Cell(1, 3); got != "Present" {
		t.Errorf("Expected Alice Present, got %q", got)
	}
	// Members absent from the observation are marked explicitly
	if got := env.attendance.Cell(2, 3); got != "Not Present" {
		t.Errorf("Expected Bob Not Present, got %q", got)
	}
}

func TestAttendanceService_SubmitIsIdempotent(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)
	observation := map[string]string{"Alice Tan": "Present", "Bob Ng": "Not Present"}

	if err := env.services.Attendance.Submit(context.Background(), "2025-01-10", observation); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	snapshot := make([][]string, len(env.attendance.Grid))
	for i, row := range env.attendance.Grid {
		snapshot[i] = append([]string(nil), row...)
	}

	if err := env.services.Attendance.Submit(context.Background(), "2025-01-10", observation); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	if !reflect.DeepEqual(env.attendance.Grid, snapshot) {
		t.Errorf("resubmission changed the grid:\nbefore %v\nafter  %v", snapshot, env.attendance.Grid)
	}
	if got := len(env.attendance.Grid[0]); got != 4 {
		t.Errorf("Expected 4 header cells after resubmission, got %d", got)
	}
}

func TestAttendanceService_SubmitReusesExistingColumn(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-03", map[string]string{
		"Bob Ng": "Present",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := len(env.attendance.Grid[0]); got != 3 {
		t.Errorf("Expected no new column, header now has %d cells", got)
	}
	if got := env.attendance.Cell(2, 2); got != "Present" {
		t.Errorf("Expected Bob updated to Present, got %q", got)
	}
	if got := env.attendance.Cell(1, 2); got != "Not Present" {
		t.Errorf("Expected Alice overwritten to Not Present, got %q", got)
	}
}

func TestAttendanceService_SubmitMatchesNamesCaseInsensitive(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-10", map[string]string{
		"  alice TAN  ": "Present",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := len(env.attendance.Grid); got != 3 {
		t.Fatalf("Expected no appended rows, grid has %d", got)
	}
	if got := env.attendance.Cell(1, 3); got != "Present" {
		t.Errorf("Expected existing Alice row updated, got %q", got)
	}
}

func TestAttendanceService_SubmitAppendsNewMembersSorted(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-10", map[string]string{
		"Zoe Lim":   "Present",
		"Ben Chua":  "Present",
		"Alice Tan": "Present",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := len(env.attendance.Grid); got != 5 {
		t.Fatalf("Expected 2 appended rows, grid has %d rows", got)
	}
	// New members land after the existing rows in alphabetical order,
	// keeping the submitted casing
	if got := env.attendance.Cell(3, 1); got != "Ben Chua" {
		t.Errorf("Expected Ben Chua appended first, got %q", got)
	}
	if got := env.attendance.Cell(4, 1); got != "Zoe Lim" {
		t.Errorf("Expected Zoe Lim appended second, got %q", got)
	}
	if got := env.attendance.Cell(3, 3); got != "Present" {
		t.Errorf("Expected appended Ben marked Present, got %q", got)
	}
}

func TestAttendanceService_SubmitRejectsDuplicateKeys(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-10", map[string]string{
		"Alice Tan":   "Present",
		" ALICE TAN ": "Not Present",
	})

	var dup *service.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateKeyError, got %v", err)
	}
	if dup.First == "" || dup.Second == "" {
		t.Errorf("Expected both colliding keys reported, got %+v", dup)
	}
	if len(env.attendance.WriteCalls) != 0 {
		t.Errorf("Expected no writes on duplicate keys, got %d", len(env.attendance.WriteCalls))
	}
}

func TestAttendanceService_SubmitNormalizesStatuses(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	err := env.services.Attendance.Submit(context.Background(), "2025-01-10", map[string]string{
		"Alice Tan": " Present ",
		"Bob Ng":    "present",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := env.attendance.Cell(1, 3); got != "Present" {
		t.Errorf("Expected padded Present accepted, got %q", got)
	}
	// Anything other than the exact Present status stores as absence
	if got := env.attendance.Cell(2, 3); got != "Not Present" {
		t.Errorf("Expected lowercase present stored as Not Present, got %q", got)
	}
}

func TestAttendanceService_SubmitRejectsEmptyInput(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	tests := []struct {
		name        string
		date        string
		observation map[string]string
	}{
		{name: "blank date", date: "   ", observation: map[string]string{"Alice Tan": "Present"}},
		{name: "empty observation", date: "2025-01-10", observation: map[string]string{}},
		{name: "placeholder names only", date: "2025-01-10", observation: map[string]string{"nan": "Present", "  ": "Present"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.services.Attendance.Submit(context.Background(), tt.date, tt.observation)
			if !errors.Is(err, service.ErrEmptyInput) {
				t.Errorf("Expected ErrEmptyInput, got %v", err)
			}
		})
	}
	if len(env.attendance.WriteCalls) != 0 {
		t.Errorf("Expected no writes, got %d", len(env.attendance.WriteCalls))
	}
}

func TestAttendanceService_ForDate(t *testing.T) {
	grid := [][]string{
		{"", "Name", "2025-01-03", "2025-01-10"},
		{"", "Alice Tan", "Present", ""},
		{"", "Bob Ng", "Not Present", "Present"},
	}
	env := newTestEnv(grid, nil, nil)

	resp, err := env.services.Attendance.ForDate(context.Background(), "2025-01-10")
	if err != nil {
		t.Fatalf("ForDate failed: %v", err)
	}
	if resp.Date != "2025-01-10" {
		t.Errorf("Expected date 2025-01-10, got %q", resp.Date)
	}
	// Cells never written read back as explicit absence
	want := map[string]string{"Alice Tan": "Not Present", "Bob Ng": "Present"}
	if !reflect.DeepEqual(resp.Attendance, want) {
		t.Errorf("Expected %v, got %v", want, resp.Attendance)
	}
}

func TestAttendanceService_ForDateNotFound(t *testing.T) {
	env := newTestEnv(attendanceGrid(), nil, nil)

	_, err := env.services.Attendance.ForDate(context.Background(), "2030-12-25")
	if !errors.Is(err, service.ErrDateNotFound) {
		t.Errorf("Expected ErrDateNotFound, got %v", err)
	}
}

func TestAttendanceService_MostRecent(t *testing.T) {
	grid := [][]string{
		{"", "Name", "01/15/2025", "Session 3", "2025-01-20", "2025-01-08"},
		{"", "Alice Tan", "Present", "", "Not Present", "Present"},
	}
	env := newTestEnv(grid, nil, nil)

	resp, err := env.services.Attendance.MostRecent(context.Background())
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	// Mixed label layouts compare by parsed date; unparseable labels
	// are ignored
	if resp.Date != "2025-01-20" {
		t.Errorf("Expected most recent 2025-01-20, got %q", resp.Date)
	}
	if got := resp.Attendance["Alice Tan"]; got != "Not Present" {
		t.Errorf("Expected Alice Not Present on 2025-01-20, got %q", got)
	}
}

func TestAttendanceService_MostRecentTieKeepsLeftmost(t *testing.T) {
	grid := [][]string{
		{"", "Name", "2025-01-20", "20-Jan-2025"},
		{"", "Alice Tan", "Present", "Not Present"},
	}
	env := newTestEnv(grid, nil, nil)

	resp, err := env.services.Attendance.MostRecent(context.Background())
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	if resp.Date != "2025-01-20" {
		t.Errorf("Expected left-most column to win the tie, got %q", resp.Date)
	}
	if got := resp.Attendance["Alice Tan"]; got != "Present" {
		t.Errorf("Expected statuses from the left-most column, got %q", got)
	}
}

func TestAttendanceService_MostRecentNoDateColumns(t *testing.T) {
	grid := [][]string{
		{"", "Name", "Session 1", "Session 2"},
		{"", "Alice Tan", "x", ""},
	}
	env := newTestEnv(grid, nil, nil)

	_, err := env.services.Attendance.MostRecent(context.Background())
	if !errors.Is(err, service.ErrDateNotFound) {
		t.Errorf("Expected ErrDateNotFound, got %v", err)
	}
}

func TestAttendanceService_ParseFileCSV(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	csvData := []byte("Name,2025-01-10\nAlice Tan,x\nBob Ng,\nCARA lim,✓\nalice tan,\nnan,\n")
	attendance, err := env.services.Attendance.ParseFile(csvData, "attendance.csv")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	want := map[string]string{
		"Alice Tan": "Present",
		"Bob Ng":    "Not Present",
		"CARA lim":  "Present",
	}
	if !reflect.DeepEqual(attendance, want) {
		t.Errorf("Expected %v, got %v", want, attendance)
	}
}

func TestAttendanceService_ParseFilePresentWins(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	// The same member twice: one blank row, one ticked row. Presence
	// wins regardless of order, under the first row's casing.
	csvData := []byte("Name,Week 1\nDan Ho,\nDAN HO,x\n")
	attendance, err := env.services.Attendance.ParseFile(csvData, "attendance.csv")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	want := map[string]string{"Dan Ho": "Present"}
	if !reflect.DeepEqual(attendance, want) {
		t.Errorf("Expected %v, got %v", want, attendance)
	}
}

func TestAttendanceService_ParseFileXLSX(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "2025-01-10"},
		{"Alice Tan", "x"},
		{"Bob Ng", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	attendance, err := env.services.Attendance.ParseFile(buf.Bytes(), "attendance.xlsx")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	want := map[string]string{"Alice Tan": "Present", "Bob Ng": "Not Present"}
	if !reflect.DeepEqual(attendance, want) {
		t.Errorf("Expected %v, got %v", want, attendance)
	}
}

func TestAttendanceService_ParseFileUnsupportedFormat(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	_, err := env.services.Attendance.ParseFile([]byte("whatever"), "attendance.txt")
	if !errors.Is(err, service.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestAttendanceService_ParseFileEmpty(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	tests := []struct {
		name string
		data string
	}{
		{name: "no rows", data: ""},
		{name: "header only", data: "Name,2025-01-10\n"},
		{name: "placeholders only", data: "Name,2025-01-10\nnan,x\n,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Attendance.ParseFile([]byte(tt.data), "attendance.csv")
			if !errors.Is(err, service.ErrEmptyInput) {
				t.Errorf("Expected ErrEmptyInput, got %v", err)
			}
		})
	}
}
