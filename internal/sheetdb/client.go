package sheetdb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/tgyn-admin-api/internal/config"
)

// Worksheets of the portal spreadsheet and their header rows. Bootstrap
// creates any that are missing.
var portalWorksheets = []struct {
	Title   string
	Headers []string
}{
	{"Users", []string{"username", "password", "role", "email"}},
	{"Events", []string{"id", "name", "date", "type", "created_by", "created_at"}},
	{"Budgets", []string{"event_id", "income_data", "expense_data", "created_at"}},
	{"SOAs", []string{"event_id", "income_data", "expense_data", "receipts", "created_at"}},
}

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Client wraps the Sheets API service with the portal's spreadsheet handles
type Client struct {
	svc *sheets.Service
	log zerolog.Logger

	// Spreadsheet IDs resolved from the configured URLs
	PortalID     string
	MembersID    string
	AttendanceID string
}

// New creates a Sheets client from service-account credentials and verifies
// access to the portal spreadsheet
func New(ctx context.Context, cfg *config.SheetsConfig, log zerolog.Logger) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	client := &Client{
		svc: svc,
		log: log.With().Str("component", "sheetdb").Logger(),
	}

	if client.PortalID, err = SpreadsheetIDFromURL(cfg.PortalURL); err != nil {
		return nil, fmt.Errorf("invalid GOOGLE_SPREADSHEET_URL: %w", err)
	}
	if client.MembersID, err = SpreadsheetIDFromURL(cfg.MembersURL); err != nil {
		return nil, fmt.Errorf("invalid MEMBERS_SPREADSHEET_URL: %w", err)
	}
	if client.AttendanceID, err = SpreadsheetIDFromURL(cfg.AttendanceURL); err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_SPREADSHEET_URL: %w", err)
	}

	// Test access with timeout
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(probeCtx); err != nil {
		return nil, fmt.Errorf("failed to reach portal spreadsheet: %w", err)
	}

	client.log.Info().
		Str("portal", client.PortalID).
		Str("members", client.MembersID).
		Str("attendance", client.AttendanceID).
		Msg("Google Sheets connection established")

	return client, nil
}

// SpreadsheetIDFromURL extracts the spreadsheet ID from a share URL. A bare
// ID is accepted as-is.
func SpreadsheetIDFromURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("empty spreadsheet URL")
	}
	if m := spreadsheetURLPattern.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}
	if !strings.Contains(url, "/") {
		return url, nil
	}
	return "", fmt.Errorf("no spreadsheet ID in %q", url)
}

// HealthCheck verifies the portal spreadsheet is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.PortalID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

// Bootstrap ensures the portal worksheets exist with their header rows.
// Existing worksheets are left untouched.
func (c *Client) Bootstrap(ctx context.Context) error {
	c.log.Info().Msg("Ensuring portal worksheets")

	for _, ws := range portalWorksheets {
		created, err := c.EnsureWorksheet(ctx, c.PortalID, ws.Title, ws.Headers)
		if err != nil {
			return fmt.Errorf("failed to ensure worksheet %s: %w", ws.Title, err)
		}
		if created {
			c.log.Info().Str("worksheet", ws.Title).Msg("Worksheet created")
		}
	}

	return nil
}

// EnsureWorksheet creates the named worksheet with a header row if it does
// not already exist. Returns whether it was created.
func (c *Client) EnsureWorksheet(ctx context.Context, spreadsheetID, title string, headers []string) (bool, error) {
	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == title {
			return false, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("failed to add worksheet: %w", err)
	}

	if len(headers) > 0 {
		if err := c.AppendRow(ctx, spreadsheetID, title, headers); err != nil {
			return false, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	return true, nil
}

// SheetTitle returns the title of the worksheet at the given index
func (c *Client) SheetTitle(ctx context.Context, spreadsheetID string, index int) (string, error) {
	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	if index < 0 || index >= len(meta.Sheets) {
		return "", fmt.Errorf("no worksheet at index %d", index)
	}
	return meta.Sheets[index].Properties.Title, nil
}

// ReadRange returns the values of an A1 range as strings. Trailing empty
// cells are absent from the API response, so rows may be ragged.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// ReadSheet returns all values of the named worksheet
func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, title string) ([][]string, error) {
	return c.ReadRange(ctx, spreadsheetID, rangeForSheet(title))
}

// UpdateCell writes a single cell. Row and column are zero-based; the A1
// notation of the wire is derived here.
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, title string, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates (%d,%d): %w", row, col, err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err = c.svc.Spreadsheets.Values.
		Update(spreadsheetID, fmt.Sprintf("%s!%s", rangeForSheet(title), cell), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}

// AppendRow appends a row after the last data row of the worksheet
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, title string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.
		Append(spreadsheetID, rangeForSheet(title), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", title, err)
	}
	return nil
}

// rangeForSheet quotes a worksheet title for use in A1 notation
func rangeForSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
