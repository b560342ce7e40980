package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

const (
	orgName = "Teck Ghee Youth Network"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	currencyFormat = "$#,##0.00"

	// budgetMinRows keeps the printed tables a usable length even for
	// short item lists
	budgetMinRows = 17
)

// budgetService is the concrete implementation of BudgetService
type budgetService struct {
	records  repository.RecordRepository
	notifier Notifier
	log      zerolog.Logger
}

// newBudgetService creates a new budget service
func newBudgetService(records repository.RecordRepository, notifier Notifier, log zerolog.Logger) BudgetService {
	return &budgetService{
		records:  records,
		notifier: notifier,
		log:      log.With().Str("service", "budget").Logger(),
	}
}

// Preview computes line totals and sums without rendering a workbook
func (s *budgetService) Preview(req *models.BudgetRequest) *models.BudgetPreview {
	preview := &models.BudgetPreview{
		EventName:    req.EventName,
		IncomeItems:  make([]models.BudgetPreviewItem, 0, len(req.IncomeItems)),
		ExpenseItems: make([]models.BudgetPreviewItem, 0, len(req.ExpenseItems)),
	}

	for _, item := range req.IncomeItems {
		preview.IncomeItems = append(preview.IncomeItems, previewItem(item))
		preview.IncomeTotal += item.Total()
	}
	for _, item := range req.ExpenseItems {
		preview.ExpenseItems = append(preview.ExpenseItems, previewItem(item))
		preview.ExpenseTotal += item.Total()
	}
	preview.NetAmount = preview.IncomeTotal - preview.ExpenseTotal

	return preview
}

func previewItem(item models.BudgetItem) models.BudgetPreviewItem {
	return models.BudgetPreviewItem{
		Description: item.Description,
		PerUnit:     item.PerUnit,
		Quantity:    item.Quantity,
		Total:       item.Total(),
	}
}

// Generate renders the projected statement of accounts workbook and records
// the event in the portal spreadsheet
func (s *budgetService) Generate(ctx context.Context, req *models.BudgetRequest, createdBy string) (*Document, error) {
	data, err := s.render(req)
	if err != nil {
		return nil, err
	}

	s.record(ctx, req, createdBy)

	doc := &Document{
		Filename:    sanitizeFilename(req.EventName) + "_Budget.xlsx",
		ContentType: xlsxContentType,
		Data:        data,
	}
	s.log.Info().Str("event", req.EventName).Int("bytes", len(data)).Msg("Budget generated")
	return doc, nil
}

// SendToTelegram generates the workbook, uploads it to the group chat and
// opens an approval poll
func (s *budgetService) SendToTelegram(ctx context.Context, req *models.BudgetRequest, createdBy string) (*Document, error) {
	if s.notifier == nil {
		return nil, ErrTelegramNotConfigured
	}

	doc, err := s.Generate(ctx, req, createdBy)
	if err != nil {
		return nil, err
	}

	caption := fmt.Sprintf("📄 %s - Ready for approval", doc.Filename)
	if err := s.notifier.SendDocument(ctx, doc.Filename, doc.Data, caption); err != nil {
		return nil, fmt.Errorf("failed to deliver budget: %w", err)
	}

	question := fmt.Sprintf("Approval for %s Budget", req.EventName)
	if err := s.notifier.SendPoll(ctx, question, []string{"Yes ✅", "No ❌"}); err != nil {
		return nil, fmt.Errorf("failed to open approval poll: %w", err)
	}

	return doc, nil
}

// record appends Events and Budgets rows for the generated document. A
// record failure is logged, not surfaced: the workbook is already built
// and the rows can be backfilled.
func (s *budgetService) record(ctx context.Context, req *models.BudgetRequest, createdBy string) {
	eventID := uuid.New().String()
	now := time.Now()

	income, _ := json.Marshal(req.IncomeItems)
	expense, _ := json.Marshal(req.ExpenseItems)

	err := s.records.CreateEvent(ctx, &models.EventRecord{
		ID:        eventID,
		Name:      req.EventName,
		Date:      req.EventDate,
		Type:      models.EventTypeBudget,
		CreatedBy: createdBy,
		CreatedAt: now,
	})
	if err == nil {
		err = s.records.CreateBudget(ctx, &models.BudgetRecord{
			EventID:     eventID,
			IncomeData:  string(income),
			ExpenseData: string(expense),
			CreatedAt:   now,
		})
	}
	if err != nil {
		s.log.Warn().Err(err).Str("event", req.EventName).Msg("Failed to record budget")
	}
}

// render builds the workbook. The layout mirrors the organization's paper
// form: merged title block, side-by-side income and expenditure tables,
// totals, net line and three signature blocks.
func (s *budgetService) render(req *models.BudgetRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Budget"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to prepare worksheet: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "H", 14); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	styles, err := newBudgetStyles(f)
	if err != nil {
		return nil, err
	}

	// Title block
	titleRows := []struct {
		row   int
		value string
		style int
	}{
		{1, orgName, styles.title},
		{2, formatEventDate(req.EventDate), styles.subtitle},
		{3, req.EventName, styles.subtitle},
		{4, "Projected Statement of Accounts", styles.subtitle},
		{6, fmt.Sprintf("No. of Participants: %d          No. of Volunteers: %d", req.Participants, req.Volunteers), styles.subtitle},
	}
	for _, tr := range titleRows {
		if err := f.MergeCell(sheet, fmt.Sprintf("A%d", tr.row), fmt.Sprintf("H%d", tr.row)); err != nil {
			return nil, fmt.Errorf("failed to merge title row: %w", err)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", tr.row), tr.value)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", tr.row), fmt.Sprintf("H%d", tr.row), tr.style)
	}

	// Section labels and table headers
	f.MergeCell(sheet, "A9", "D9")
	f.SetCellValue(sheet, "A9", "INCOME")
	f.SetCellStyle(sheet, "A9", "D9", styles.section)

	f.MergeCell(sheet, "E9", "H9")
	f.SetCellValue(sheet, "E9", "EXPENDITURE")
	f.SetCellStyle(sheet, "E9", "H9", styles.section)

	headers := []string{"Description", "$ per unit", "Qty", "$"}
	for i, h := range headers {
		incomeCell, _ := excelize.CoordinatesToCellName(i+1, 10)
		expenseCell, _ := excelize.CoordinatesToCellName(i+5, 10)
		f.SetCellValue(sheet, incomeCell, h)
		f.SetCellValue(sheet, expenseCell, h)
	}
	f.SetCellStyle(sheet, "A10", "H10", styles.header)

	// Item rows, padded so both tables print the same length
	rows := len(req.IncomeItems)
	if len(req.ExpenseItems) > rows {
		rows = len(req.ExpenseItems)
	}
	if rows < budgetMinRows {
		rows = budgetMinRows
	}

	var incomeTotal, expenseTotal float64
	for i := 0; i < rows; i++ {
		row := 11 + i
		if i < len(req.IncomeItems) {
			item := req.IncomeItems[i]
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Description)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.PerUnit)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Total())
			incomeTotal += item.Total()
		}
		if i < len(req.ExpenseItems) {
			item := req.ExpenseItems[i]
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Description)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.PerUnit)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), item.Total())
			expenseTotal += item.Total()
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), styles.cell)
		f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styles.money)
		f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("G%d", row), styles.cell)
		f.SetCellStyle(sheet, fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), styles.money)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.money)
		f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), styles.money)
	}

	// Totals
	totalRow := 11 + rows
	f.MergeCell(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("C%d", totalRow))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total Income")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), incomeTotal)
	f.MergeCell(sheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("G%d", totalRow))
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), "Total Expenditure")
	f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), expenseTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("C%d", totalRow), styles.totalLabel)
	f.SetCellStyle(sheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("D%d", totalRow), styles.totalMoney)
	f.SetCellStyle(sheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("G%d", totalRow), styles.totalLabel)
	f.SetCellStyle(sheet, fmt.Sprintf("H%d", totalRow), fmt.Sprintf("H%d", totalRow), styles.totalMoney)

	// Net line
	netRow := totalRow + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", netRow), "Deficit/Surplus:")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", netRow), incomeTotal-expenseTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", netRow), fmt.Sprintf("A%d", netRow), styles.totalLabel)
	f.SetCellStyle(sheet, fmt.Sprintf("B%d", netRow), fmt.Sprintf("B%d", netRow), styles.totalMoney)

	// Signature blocks
	sigRow := netRow + 3
	writeSignature := func(col string, lines []string) {
		for i, line := range lines {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, sigRow+i), line)
		}
		f.SetCellStyle(sheet, fmt.Sprintf("%s%d", col, sigRow), fmt.Sprintf("%s%d", col, sigRow), styles.totalLabel)
	}
	writeSignature("A", []string{"Prepared By:", req.PreparedBy, req.Designation, orgName})
	writeSignature("D", []string{"Vetted By:", req.VettedBy, "Member", orgName})
	writeSignature("G", []string{"Approved By:", "[Name]", "Chairman/Treasurer", orgName})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// budgetStyles holds the style IDs the budget sheet uses
type budgetStyles struct {
	title      int
	subtitle   int
	section    int
	header     int
	cell       int
	money      int
	totalLabel int
	totalMoney int
}

func newBudgetStyles(f *excelize.File) (*budgetStyles, error) {
	borders := allBorders()
	numFmt := currencyFormat

	var (
		s   budgetStyles
		err error
	)

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 14, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.section, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      grayFill(),
		Border:    borders,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      grayFill(),
		Border:    borders,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Calibri", Size: 11},
		Border: borders,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Family: "Calibri", Size: 11},
		Border:       borders,
		CustomNumFmt: &numFmt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.totalLabel, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Calibri", Size: 11, Bold: true},
		Border: borders,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if s.totalMoney, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Family: "Calibri", Size: 11, Bold: true},
		Border:       borders,
		CustomNumFmt: &numFmt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	return &s, nil
}

func allBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func grayFill() excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}}
}

// formatEventDate renders ISO dates as the form's 02-Jan-06 style; other
// inputs pass through untouched
func formatEventDate(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("02-Jan-06")
	}
	return date
}

// sanitizeFilename makes an event name safe for a download filename
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	if name == "" {
		name = "Event"
	}
	return name
}
