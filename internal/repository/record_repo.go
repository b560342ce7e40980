package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tgyn-admin-api/internal/models"
)

// Worksheets holding generated-document records
const (
	eventsSheet  = "Events"
	budgetsSheet = "Budgets"
	soasSheet    = "SOAs"
)

// recordRepo is the concrete implementation of RecordRepository
type recordRepo struct {
	api           SheetAPI
	spreadsheetID string
}

// NewRecordRepo creates a new record repository over the portal spreadsheet
func NewRecordRepo(api SheetAPI, spreadsheetID string) RecordRepository {
	return &recordRepo{api: api, spreadsheetID: spreadsheetID}
}

// CreateEvent appends a row to the Events worksheet
func (r *recordRepo) CreateEvent(ctx context.Context, event *models.EventRecord) error {
	err := r.api.AppendRow(ctx, r.spreadsheetID, eventsSheet, []string{
		event.ID,
		event.Name,
		event.Date,
		event.Type,
		event.CreatedBy,
		event.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// CreateBudget appends a row to the Budgets worksheet
func (r *recordRepo) CreateBudget(ctx context.Context, budget *models.BudgetRecord) error {
	err := r.api.AppendRow(ctx, r.spreadsheetID, budgetsSheet, []string{
		budget.EventID,
		budget.IncomeData,
		budget.ExpenseData,
		budget.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to record budget: %w", err)
	}
	return nil
}

// CreateSOA appends a row to the SOAs worksheet
func (r *recordRepo) CreateSOA(ctx context.Context, soa *models.SOARecord) error {
	err := r.api.AppendRow(ctx, r.spreadsheetID, soasSheet, []string{
		soa.EventID,
		soa.IncomeData,
		soa.ExpenseData,
		soa.Receipts,
		soa.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to record statement of accounts: %w", err)
	}
	return nil
}
