package repository

import (
	"context"
	"fmt"
	"sync"
)

// attendanceRepo is the concrete implementation of AttendanceRepository.
// The attendance table occupies the first worksheet of the attendance
// spreadsheet; its title is resolved on first use and cached.
type attendanceRepo struct {
	api           SheetAPI
	spreadsheetID string

	mu    sync.Mutex
	title string
}

// NewAttendanceRepo creates a new attendance repository
func NewAttendanceRepo(api SheetAPI, spreadsheetID string) AttendanceRepository {
	return &attendanceRepo{api: api, spreadsheetID: spreadsheetID}
}

func (r *attendanceRepo) sheetTitle(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.title != "" {
		return r.title, nil
	}
	title, err := r.api.SheetTitle(ctx, r.spreadsheetID, 0)
	if err != nil {
		return "", fmt.Errorf("failed to resolve attendance worksheet: %w", err)
	}
	r.title = title
	return title, nil
}

// ReadGrid returns the full attendance table, header row first
func (r *attendanceRepo) ReadGrid(ctx context.Context) ([][]string, error) {
	title, err := r.sheetTitle(ctx)
	if err != nil {
		return nil, err
	}
	return r.api.ReadSheet(ctx, r.spreadsheetID, title)
}

// WriteCell writes a single cell of the attendance table
func (r *attendanceRepo) WriteCell(ctx context.Context, row, col int, value string) error {
	title, err := r.sheetTitle(ctx)
	if err != nil {
		return err
	}
	return r.api.UpdateCell(ctx, r.spreadsheetID, title, row, col, value)
}

// AppendHeader writes a date label into the header row at the given column
func (r *attendanceRepo) AppendHeader(ctx context.Context, col int, value string) error {
	return r.WriteCell(ctx, 0, col, value)
}
