package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

// Attendance table geometry: column A is reserved, column B holds member
// names, date columns start at C.
const (
	nameColumn      = 1
	firstDateColumn = 2
)

// dateLayouts are tried in order when interpreting a header label as a
// date. The first layout that parses wins for that label.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"January 2, 2006",
	"2-Jan-2006",
	"2-Jan-06",
}

// tickIndicators mark a presence cell in uploaded files. A cell counts as
// ticked when its trimmed lowercase form contains any of these.
var tickIndicators = []string{"✓", "✔", "☑", "x", "yes", "y", "1", "p", "present", "√", "true", "t"}

// checkGlyphs are additionally scanned against the raw cell; check marks
// arrive in many encodings from exported sheets
var checkGlyphs = []string{"✓", "✔", "☑", "√"}

// headerTokens identify a header row in uploaded files
var headerTokens = []string{"name", "member", "person", "attendee"}

// attendanceService is the concrete implementation of AttendanceService.
// Submissions for the same date serialize on a per-date mutex; structural
// changes (new columns, new member rows) additionally serialize on
// structMu so submissions for different dates cannot claim the same slot.
type attendanceService struct {
	repo repository.AttendanceRepository
	log  zerolog.Logger

	mu        sync.Mutex
	dateLocks map[string]*sync.Mutex
	structMu  sync.Mutex
}

// newAttendanceService creates a new attendance service
func newAttendanceService(repo repository.AttendanceRepository, log zerolog.Logger) AttendanceService {
	return &attendanceService{
		repo:      repo,
		log:       log.With().Str("service", "attendance").Logger(),
		dateLocks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding submissions for a date key
func (s *attendanceService) lockFor(date string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.dateLocks[date]
	if !ok {
		lock = &sync.Mutex{}
		s.dateLocks[date] = lock
	}
	return lock
}

// normalizeName trims a raw name and derives its matching identity. The
// second return is the display form, the third reports whether the name is
// usable at all: empty, "nan" and "none" cells are placeholders, not
// members.
func normalizeName(raw string) (identity, display string, ok bool) {
	display = strings.TrimSpace(raw)
	if display == "" {
		return "", "", false
	}
	identity = strings.ToLower(display)
	if identity == "nan" || identity == "none" {
		return "", "", false
	}
	return identity, display, true
}

// parseDateLabel interprets a header label as a calendar date
func parseDateLabel(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isTick reports whether an uploaded cell marks presence
func isTick(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return false
	}
	for _, t := range tickIndicators {
		if strings.Contains(lower, t) {
			return true
		}
	}
	for _, g := range checkGlyphs {
		if strings.Contains(value, g) {
			return true
		}
	}
	return false
}

// isHeaderRow reports whether an uploaded row is a column header
func isHeaderRow(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	for _, token := range headerTokens {
		if strings.Contains(joined, token) {
			return true
		}
	}
	return false
}

// valueAt returns the cell at idx, tolerating ragged rows
func valueAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// observationEntry is one normalized observation key
type observationEntry struct {
	display string
	status  string
}

// dateColumn is a typed view of one date header cell
type dateColumn struct {
	Col    int
	Label  string
	Parsed time.Time
	Valid  bool
}

// tableIndex is a columnar view of the grid, built once per operation so
// row and column resolution are map lookups
type tableIndex struct {
	rowByName map[string]int
	namedRows []int
	colByDate map[string]int
	dateCols  []dateColumn
}

// buildIndex indexes a grid snapshot. Rows without a usable name and
// header cells that are blank are excluded.
func buildIndex(grid [][]string) *tableIndex {
	index := &tableIndex{
		rowByName: make(map[string]int),
		colByDate: make(map[string]int),
	}

	var header []string
	if len(grid) > 0 {
		header = grid[0]
	}
	for c := firstDateColumn; c < len(header); c++ {
		label := strings.TrimSpace(header[c])
		if label == "" {
			continue
		}
		parsed, valid := parseDateLabel(label)
		index.dateCols = append(index.dateCols, dateColumn{Col: c, Label: label, Parsed: parsed, Valid: valid})
		if _, exists := index.colByDate[label]; !exists {
			index.colByDate[label] = c
		}
	}

	for r := 1; r < len(grid); r++ {
		identity, _, ok := normalizeName(valueAt(grid[r], nameColumn))
		if !ok {
			continue
		}
		if _, exists := index.rowByName[identity]; !exists {
			index.rowByName[identity] = r
		}
		index.namedRows = append(index.namedRows, r)
	}

	return index
}

// columnStatuses reads one date column into a name-to-status mapping.
// Empty cells read back as Not Present; the first row with a given
// identity supplies the display name.
func columnStatuses(grid [][]string, index *tableIndex, col int) map[string]string {
	statuses := make(map[string]string, len(index.namedRows))
	seen := make(map[string]bool, len(index.namedRows))

	for _, r := range index.namedRows {
		identity, display, _ := normalizeName(valueAt(grid[r], nameColumn))
		if seen[identity] {
			continue
		}
		seen[identity] = true

		status := strings.TrimSpace(valueAt(grid[r], col))
		if status == "" {
			status = models.StatusNotPresent
		}
		statuses[display] = status
	}
	return statuses
}

// Submit merges an observation into the attendance table under the given
// date key. Every pre-existing member row receives an explicit status;
// observation keys that match no row are appended as new members.
func (s *attendanceService) Submit(ctx context.Context, date string, observation map[string]string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return fmt.Errorf("%w: date key is required", ErrEmptyInput)
	}
	if len(observation) == 0 {
		return ErrEmptyInput
	}

	// Normalize the observation up front so colliding keys fail before
	// any cell is written
	byIdentity := make(map[string]observationEntry, len(observation))
	for name, status := range observation {
		identity, display, ok := normalizeName(name)
		if !ok {
			continue
		}
		if prev, exists := byIdentity[identity]; exists {
			return &DuplicateKeyError{First: prev.display, Second: display}
		}
		normalized := models.StatusNotPresent
		if strings.TrimSpace(status) == models.StatusPresent {
			normalized = models.StatusPresent
		}
		byIdentity[identity] = observationEntry{display: display, status: normalized}
	}
	if len(byIdentity) == 0 {
		return ErrEmptyInput
	}

	lock := s.lockFor(date)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	grid, err := s.repo.ReadGrid(ctx)
	if err != nil {
		return fmt.Errorf("failed to read attendance table: %w", err)
	}
	index := buildIndex(grid)

	col, err := s.resolveDateColumn(ctx, index, date)
	if err != nil {
		return err
	}

	// Existing rows first: every named row gets an explicit status for
	// this date, so absence is recorded, not implied
	matched := make(map[string]bool, len(byIdentity))
	for _, r := range index.namedRows {
		identity, _, _ := normalizeName(valueAt(grid[r], nameColumn))
		status := models.StatusNotPresent
		if e, ok := byIdentity[identity]; ok {
			status = e.status
			matched[identity] = true
		}
		if err := s.repo.WriteCell(ctx, r, col, status); err != nil {
			return fmt.Errorf("failed to write attendance at row %d: %w", r+1, err)
		}
	}

	// Unmatched keys are new members, appended at the table end in a
	// stable order
	var newIdentities []string
	for identity := range byIdentity {
		if !matched[identity] {
			newIdentities = append(newIdentities, identity)
		}
	}
	added := 0
	if len(newIdentities) > 0 {
		sort.Strings(newIdentities)
		if added, err = s.appendMembers(ctx, col, newIdentities, byIdentity); err != nil {
			return err
		}
	}

	s.log.Info().
		Str("date", date).
		Int("updated", len(index.namedRows)).
		Int("added", added).
		Dur("duration", time.Since(start)).
		Msg("Attendance submitted")

	return nil
}

// resolveDateColumn finds the column matching the date key, creating it if
// absent. Creation re-reads the header under the structure lock so
// concurrent submissions for other dates cannot claim the same slot.
func (s *attendanceService) resolveDateColumn(ctx context.Context, index *tableIndex, date string) (int, error) {
	if col, ok := index.colByDate[date]; ok {
		return col, nil
	}

	s.structMu.Lock()
	defer s.structMu.Unlock()

	grid, err := s.repo.ReadGrid(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read attendance table: %w", err)
	}
	var header []string
	if len(grid) > 0 {
		header = grid[0]
	}

	// Another submission may have created the column since our snapshot
	for c := firstDateColumn; c < len(header); c++ {
		if strings.TrimSpace(header[c]) == date {
			return c, nil
		}
	}

	// First empty header slot after the name column, else append
	col := len(header)
	for c := firstDateColumn; c < len(header); c++ {
		if strings.TrimSpace(header[c]) == "" {
			col = c
			break
		}
	}
	if col < firstDateColumn {
		col = firstDateColumn
	}

	if err := s.repo.AppendHeader(ctx, col, date); err != nil {
		return 0, fmt.Errorf("failed to create date column %q: %w", date, err)
	}
	s.log.Info().Str("date", date).Int("column", col).Msg("Date column created")
	return col, nil
}

// appendMembers writes new member rows at the current table end. The grid
// is re-read under the structure lock; identities that appeared in the
// meantime are updated in place instead of appended twice.
func (s *attendanceService) appendMembers(ctx context.Context, col int, identities []string, entries map[string]observationEntry) (int, error) {
	s.structMu.Lock()
	defer s.structMu.Unlock()

	grid, err := s.repo.ReadGrid(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read attendance table: %w", err)
	}
	fresh := buildIndex(grid)

	added := 0
	next := len(grid)
	for _, identity := range identities {
		e := entries[identity]

		if r, exists := fresh.rowByName[identity]; exists {
			if err := s.repo.WriteCell(ctx, r, col, e.status); err != nil {
				return added, fmt.Errorf("failed to write attendance for %s: %w", e.display, err)
			}
			continue
		}

		if err := s.repo.WriteCell(ctx, next, nameColumn, e.display); err != nil {
			return added, fmt.Errorf("failed to append member %s: %w", e.display, err)
		}
		if err := s.repo.WriteCell(ctx, next, col, e.status); err != nil {
			return added, fmt.Errorf("failed to write attendance for %s: %w", e.display, err)
		}
		next++
		added++
	}
	return added, nil
}

// ParseFile extracts an observation from an uploaded attendance sheet.
// Column A of the file holds names; any tick in the remaining columns
// marks the member present. Rows repeating a name keep the first-seen
// casing, and Present from any occurrence wins.
func (s *attendanceService) ParseFile(data []byte, filename string) (map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var rows [][]string
	var err error
	switch ext {
	case ".xlsx", ".xls":
		rows, err = readWorkbookRows(data)
	case ".csv":
		rows, err = readCSVRows(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}
	if start >= len(rows) {
		return nil, ErrEmptyInput
	}

	attendance := make(map[string]string)
	firstSeen := make(map[string]string)

	for _, row := range rows[start:] {
		identity, display, ok := normalizeName(valueAt(row, 0))
		if !ok {
			continue
		}

		present := false
		for i := 1; i < len(row); i++ {
			if isTick(row[i]) {
				present = true
				break
			}
		}

		name, seen := firstSeen[identity]
		if !seen {
			firstSeen[identity] = display
			name = display
		}
		if present {
			attendance[name] = models.StatusPresent
		} else if !seen {
			attendance[name] = models.StatusNotPresent
		}
	}

	if len(attendance) == 0 {
		return nil, ErrEmptyInput
	}

	s.log.Debug().
		Str("filename", filename).
		Int("members", len(attendance)).
		Msg("Attendance file parsed")

	return attendance, nil
}

// readWorkbookRows loads the first worksheet of an Excel upload
func readWorkbookRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyInput
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	return rows, nil
}

// readCSVRows loads a delimited-text upload, tolerating uneven row widths
func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// ForDate returns the recorded statuses for an exact date key
func (s *attendanceService) ForDate(ctx context.Context, date string) (*models.AttendanceResponse, error) {
	date = strings.TrimSpace(date)

	grid, err := s.repo.ReadGrid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance table: %w", err)
	}
	index := buildIndex(grid)

	col, ok := index.colByDate[date]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDateNotFound, date)
	}

	return &models.AttendanceResponse{
		Date:       date,
		Attendance: columnStatuses(grid, index, col),
	}, nil
}

// MostRecent returns the statuses of the newest parseable date column.
// Ties between equal dates go to the left-most column.
func (s *attendanceService) MostRecent(ctx context.Context) (*models.AttendanceResponse, error) {
	grid, err := s.repo.ReadGrid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance table: %w", err)
	}
	index := buildIndex(grid)

	best := -1
	var bestLabel string
	var bestTime time.Time
	for _, dc := range index.dateCols {
		if !dc.Valid {
			continue
		}
		if best == -1 || dc.Parsed.After(bestTime) {
			best = dc.Col
			bestLabel = dc.Label
			bestTime = dc.Parsed
		}
	}
	if best == -1 {
		return nil, fmt.Errorf("%w: no date columns", ErrDateNotFound)
	}

	return &models.AttendanceResponse{
		Date:       bestLabel,
		Attendance: columnStatuses(grid, index, best),
	}, nil
}
