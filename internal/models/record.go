package models

import (
	"time"
)

// Document types recorded against an event
const (
	EventTypeBudget = "budget"
	EventTypeSOA    = "soa"
)

// EventRecord represents a row in the Events worksheet
type EventRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetRecord represents a row in the Budgets worksheet. Item payloads
// are stored JSON-encoded.
type BudgetRecord struct {
	EventID     string    `json:"event_id"`
	IncomeData  string    `json:"income_data"`
	ExpenseData string    `json:"expense_data"`
	CreatedAt   time.Time `json:"created_at"`
}

// SOARecord represents a row in the SOAs worksheet
type SOARecord struct {
	EventID     string    `json:"event_id"`
	IncomeData  string    `json:"income_data"`
	ExpenseData string    `json:"expense_data"`
	Receipts    string    `json:"receipts"`
	CreatedAt   time.Time `json:"created_at"`
}
