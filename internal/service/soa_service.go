package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

const (
	soaCentreName = "Ang Mo Kio Community Centre"
	soaCommittee  = "Teck Ghee West Youth Network"
)

// soaService is the concrete implementation of SOAService
type soaService struct {
	records repository.RecordRepository
	log     zerolog.Logger
}

// newSOAService creates a new statement-of-accounts service
func newSOAService(records repository.RecordRepository, log zerolog.Logger) SOAService {
	return &soaService{
		records: records,
		log:     log.With().Str("service", "soa").Logger(),
	}
}

// Generate renders the actual-vs-budget statement workbook and records the
// event in the portal spreadsheet
func (s *soaService) Generate(ctx context.Context, req *models.SOARequest, createdBy string) (*Document, error) {
	data, err := s.render(req)
	if err != nil {
		return nil, err
	}

	s.record(ctx, req, createdBy)

	doc := &Document{
		Filename:    sanitizeFilename(req.EventName) + "_SOA.xlsx",
		ContentType: xlsxContentType,
		Data:        data,
	}
	s.log.Info().Str("event", req.EventName).Int("bytes", len(data)).Msg("Statement of accounts generated")
	return doc, nil
}

// record appends Events and SOAs rows. Failures are logged, not surfaced.
func (s *soaService) record(ctx context.Context, req *models.SOARequest, createdBy string) {
	eventID := uuid.New().String()
	now := time.Now()

	income, _ := json.Marshal(req.IncomeItems)
	expense, _ := json.Marshal(req.ExpenseItems)
	receipts, _ := json.Marshal(req.Receipts)

	err := s.records.CreateEvent(ctx, &models.EventRecord{
		ID:        eventID,
		Name:      req.EventName,
		Date:      req.EventDate,
		Type:      models.EventTypeSOA,
		CreatedBy: createdBy,
		CreatedAt: now,
	})
	if err == nil {
		err = s.records.CreateSOA(ctx, &models.SOARecord{
			EventID:     eventID,
			IncomeData:  string(income),
			ExpenseData: string(expense),
			Receipts:    string(receipts),
			CreatedAt:   now,
		})
	}
	if err != nil {
		s.log.Warn().Err(err).Str("event", req.EventName).Msg("Failed to record statement of accounts")
	}
}

// render builds the workbook: centre header, committee and event details,
// income and expense tables with actual, budgeted and variance columns,
// totals, the surplus line and three signature blocks.
func (s *soaService) render(req *models.SOARequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "SOA"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to prepare worksheet: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 34); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "D", 14); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	styles, err := newSOAStyles(f)
	if err != nil {
		return nil, err
	}

	// Centre and committee block
	f.MergeCell(sheet, "A1", "D1")
	f.SetCellValue(sheet, "A1", soaCentreName)
	f.SetCellStyle(sheet, "A1", "D1", styles.title)

	f.MergeCell(sheet, "A2", "D2")
	f.SetCellValue(sheet, "A2", "Organising Committee: "+soaCommittee)
	f.SetCellStyle(sheet, "A2", "D2", styles.subtitle)

	details := []struct {
		label string
		value string
	}{
		{"Event:", req.EventName},
		{"Date:", formatEventDate(req.EventDate)},
		{"Venue:", req.Venue},
		{"Activity Code:", req.ActivityCode},
	}
	for i, d := range details {
		row := 4 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), d.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), d.value)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
	}

	// Income table
	headerRow := 9
	for i, h := range []string{"INCOME", "ACTUAL", "BUDGETTED", "VARIANCE"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("D%d", headerRow), styles.header)

	row := headerRow + 1
	var incomeActual, incomeBudgeted float64
	row, incomeActual, incomeBudgeted = s.writeItems(f, sheet, styles, row, req.IncomeItems)

	incomeTotalRow := row
	writeSOATotal(f, sheet, styles, incomeTotalRow, "TOTAL INCOME", incomeActual, incomeBudgeted)
	row += 2

	// Expense table
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "EXPENSES")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), styles.header)
	row++

	var expenseActual, expenseBudgeted float64
	row, expenseActual, expenseBudgeted = s.writeItems(f, sheet, styles, row, req.ExpenseItems)

	writeSOATotal(f, sheet, styles, row, "TOTAL EXPENDITURE", expenseActual, expenseBudgeted)
	row += 2

	// Surplus line
	writeSOATotal(f, sheet, styles, row, "SURPLUS / (DEFICIT)", incomeActual-expenseActual, incomeBudgeted-expenseBudgeted)
	row += 3

	// Signature blocks
	signatures := []struct {
		col   string
		lines []string
	}{
		{"A", []string{"Prepared by:", req.PreparedBy, req.DesignationPrepared, soaCommittee}},
		{"C", []string{"Certified By:", req.CertifiedBy, req.DesignationCertified, soaCommittee}},
		{"D", []string{"Approved By:", "[Name]", "Constituency Director", soaCentreName}},
	}
	for _, sig := range signatures {
		for i, line := range sig.lines {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", sig.col, row+i), line)
		}
		f.SetCellStyle(sheet, fmt.Sprintf("%s%d", sig.col, row), fmt.Sprintf("%s%d", sig.col, row), styles.label)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeItems renders item rows and returns the next free row plus the
// actual and budgeted sums
func (s *soaService) writeItems(f *excelize.File, sheet string, styles *soaStyles, row int, items []models.SOAItem) (int, float64, float64) {
	var actual, budgeted float64
	for _, item := range items {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Description)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Actual)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Budgeted)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Variance())
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.cell)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), styles.money)
		actual += item.Actual
		budgeted += item.Budgeted
		row++
	}
	return row, actual, budgeted
}

// writeSOATotal renders a rule-bordered summary row with the variance in
// the last column
func writeSOATotal(f *excelize.File, sheet string, styles *soaStyles, row int, label string, actual, budgeted float64) {
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label)
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), actual)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), budgeted)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), actual-budgeted)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.totalLabel)
	f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), styles.totalMoney)
}

// soaStyles holds the style IDs the statement sheet uses
type soaStyles struct {
	title      int
	subtitle   int
	label      int
	header     int
	cell       int
	money      int
	totalLabel int
	totalMoney int
}

func newSOAStyles(f *excelize.File) (*soaStyles, error) {
	numFmt := currencyFormat
	ruleBorders := []excelize.Border{
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 6},
	}

	var (
		s   soaStyles
		err error
	)

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 12, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 10, Bold: true},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      grayFill(),
		Border:    allBorders(),
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 10},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Family: "Arial", Size: 10},
		CustomNumFmt: &numFmt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.totalLabel, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 10, Bold: true},
		Border: ruleBorders,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.totalMoney, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Family: "Arial", Size: 10, Bold: true},
		Border:       ruleBorders,
		CustomNumFmt: &numFmt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	return &s, nil
}
