package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tgyn-admin-api/internal/mocks"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
)

func budgetRequest() *models.BudgetRequest {
	return &models.BudgetRequest{
		EventName:    "Youth Camp",
		EventDate:    "2025-06-07",
		Participants: 40,
		Volunteers:   8,
		IncomeItems: []models.BudgetItem{
			{Description: "Ticket sales", PerUnit: 25, Quantity: 10},
		},
		ExpenseItems: []models.BudgetItem{
			{Description: "Venue rental", PerUnit: 180, Quantity: 1},
		},
		PreparedBy:  "Jordan Lee",
		Designation: "Treasurer",
		VettedBy:    "Sam Koh",
	}
}

func TestBudgetService_Preview(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	req := budgetRequest()
	req.IncomeItems = append(req.IncomeItems, models.BudgetItem{Description: "Donations", PerUnit: 50, Quantity: 2})

	preview := env.services.Budget.Preview(req)

	if preview.EventName != "Youth Camp" {
		t.Errorf("Expected event name Youth Camp, got %q", preview.EventName)
	}
	if preview.IncomeTotal != 350 {
		t.Errorf("Expected income total 350, got %v", preview.IncomeTotal)
	}
	if preview.ExpenseTotal != 180 {
		t.Errorf("Expected expense total 180, got %v", preview.ExpenseTotal)
	}
	if preview.NetAmount != 170 {
		t.Errorf("Expected net 170, got %v", preview.NetAmount)
	}
	if len(preview.IncomeItems) != 2 || preview.IncomeItems[0].Total != 250 {
		t.Errorf("Expected per-line totals, got %+v", preview.IncomeItems)
	}
}

func TestBudgetService_Generate(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	doc, err := env.services.Budget.Generate(context.Background(), budgetRequest(), "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if doc.Filename != "Youth_Camp_Budget.xlsx" {
		t.Errorf("Expected filename Youth_Camp_Budget.xlsx, got %q", doc.Filename)
	}
	if !strings.Contains(doc.ContentType, "spreadsheetml") {
		t.Errorf("Expected xlsx content type, got %q", doc.ContentType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("generated workbook does not open: %v", err)
	}
	defer f.Close()

	const sheet = "Budget"
	raw := excelize.Options{RawCellValue: true}

	checks := []struct {
		cell string
		want string
	}{
		{"A1", "Teck Ghee Youth Network"},
		{"A2", "07-Jun-25"},
		{"A3", "Youth Camp"},
		{"A4", "Projected Statement of Accounts"},
		{"A9", "INCOME"},
		{"E9", "EXPENDITURE"},
		{"A10", "Description"},
		{"E10", "Description"},
		{"A11", "Ticket sales"},
		{"E11", "Venue rental"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(sheet, c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", c.cell, err)
		}
		if got != c.want {
			t.Errorf("Cell %s = %q, want %q", c.cell, got, c.want)
		}
	}

	// Single-item tables pad to the minimum printed length, so totals
	// land below the padded rows
	moneyChecks := []struct {
		cell string
		want string
	}{
		{"D11", "250"},
		{"H11", "180"},
		{"D28", "250"},
		{"H28", "180"},
		{"B30", "70"},
	}
	for _, c := range moneyChecks {
		got, err := f.GetCellValue(sheet, c.cell, raw)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", c.cell, err)
		}
		if got != c.want {
			t.Errorf("Cell %s = %q, want %q", c.cell, got, c.want)
		}
	}

	if got, _ := f.GetCellValue(sheet, "A28"); got != "Total Income" {
		t.Errorf("Cell A28 = %q, want Total Income", got)
	}
	if got, _ := f.GetCellValue(sheet, "A30"); got != "Deficit/Surplus:" {
		t.Errorf("Cell A30 = %q, want Deficit/Surplus:", got)
	}
}

func TestBudgetService_GenerateRecordsEvent(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	_, err := env.services.Budget.Generate(context.Background(), budgetRequest(), "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(env.records.Events) != 1 {
		t.Fatalf("Expected 1 event record, got %d", len(env.records.Events))
	}
	event := env.records.Events[0]
	if event.Name != "Youth Camp" || event.Type != models.EventTypeBudget || event.CreatedBy != "admin" {
		t.Errorf("Unexpected event record %+v", event)
	}
	if event.ID == "" {
		t.Error("Expected a generated event ID")
	}

	if len(env.records.Budgets) != 1 {
		t.Fatalf("Expected 1 budget record, got %d", len(env.records.Budgets))
	}
	budget := env.records.Budgets[0]
	if budget.EventID != event.ID {
		t.Errorf("Budget record event ID %q does not match event %q", budget.EventID, event.ID)
	}
	if !strings.Contains(budget.IncomeData, "Ticket sales") {
		t.Errorf("Expected income payload to carry the line items, got %q", budget.IncomeData)
	}
}

func TestBudgetService_GenerateSurvivesRecordFailure(t *testing.T) {
	env := newTestEnv(nil, nil, nil)
	env.records.CreateError = fmt.Errorf("worksheet unavailable")

	doc, err := env.services.Budget.Generate(context.Background(), budgetRequest(), "admin")
	if err != nil {
		t.Fatalf("Generate should not surface record failures, got %v", err)
	}
	if len(doc.Data) == 0 {
		t.Error("Expected workbook bytes despite record failure")
	}
}

func TestBudgetService_SendToTelegram(t *testing.T) {
	notifier := &mocks.MockNotifier{}
	env := newTestEnv(nil, nil, notifier)

	doc, err := env.services.Budget.SendToTelegram(context.Background(), budgetRequest(), "admin")
	if err != nil {
		t.Fatalf("SendToTelegram failed: %v", err)
	}
	if doc.Filename != "Youth_Camp_Budget.xlsx" {
		t.Errorf("Expected returned document filename, got %q", doc.Filename)
	}

	if len(notifier.Documents) != 1 {
		t.Fatalf("Expected 1 delivered document, got %d", len(notifier.Documents))
	}
	sent := notifier.Documents[0]
	if sent.Filename != "Youth_Camp_Budget.xlsx" {
		t.Errorf("Expected delivered filename Youth_Camp_Budget.xlsx, got %q", sent.Filename)
	}
	if sent.Caption != "📄 Youth_Camp_Budget.xlsx - Ready for approval" {
		t.Errorf("Unexpected caption %q", sent.Caption)
	}
	if sent.Size == 0 {
		t.Error("Expected non-empty document payload")
	}

	if len(notifier.Polls) != 1 {
		t.Fatalf("Expected 1 poll, got %d", len(notifier.Polls))
	}
	poll := notifier.Polls[0]
	if poll.Question != "Approval for Youth Camp Budget" {
		t.Errorf("Unexpected poll question %q", poll.Question)
	}
	if len(poll.Options) != 2 || poll.Options[0] != "Yes ✅" || poll.Options[1] != "No ❌" {
		t.Errorf("Unexpected poll options %v", poll.Options)
	}
}

func TestBudgetService_SendToTelegramNotConfigured(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	_, err := env.services.Budget.SendToTelegram(context.Background(), budgetRequest(), "admin")
	if !errors.Is(err, service.ErrTelegramNotConfigured) {
		t.Errorf("Expected ErrTelegramNotConfigured, got %v", err)
	}
}

func TestBudgetService_SendToTelegramDeliveryFailure(t *testing.T) {
	notifier := &mocks.MockNotifier{DocumentError: fmt.Errorf("telegram api: chat not found")}
	env := newTestEnv(nil, nil, notifier)

	_, err := env.services.Budget.SendToTelegram(context.Background(), budgetRequest(), "admin")
	if err == nil || !strings.Contains(err.Error(), "failed to deliver budget") {
		t.Errorf("Expected delivery failure, got %v", err)
	}
	if len(notifier.Polls) != 0 {
		t.Errorf("Expected no poll after failed delivery, got %d", len(notifier.Polls))
	}
}
