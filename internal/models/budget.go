package models

// BudgetItem represents one income or expenditure line in a budget request
type BudgetItem struct {
	Description string  `json:"description"`
	PerUnit     float64 `json:"per_unit"`
	Quantity    float64 `json:"quantity"`
}

// Total returns the computed line total
func (i BudgetItem) Total() float64 {
	return i.PerUnit * i.Quantity
}

// BudgetRequest represents a budget generation request
type BudgetRequest struct {
	EventName    string       `json:"event_name" binding:"required"`
	EventDate    string       `json:"event_date"`
	Participants int          `json:"participants"`
	Volunteers   int          `json:"volunteers"`
	IncomeItems  []BudgetItem `json:"income_items"`
	ExpenseItems []BudgetItem `json:"expense_items"`
	PreparedBy   string       `json:"prepared_by"`
	Designation  string       `json:"designation"`
	VettedBy     string       `json:"vetted_by"`
}

// BudgetPreviewItem is a budget line with its computed total
type BudgetPreviewItem struct {
	Description string  `json:"description"`
	PerUnit     float64 `json:"per_unit"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
}

// BudgetPreview is the API response for budget previews
type BudgetPreview struct {
	EventName    string              `json:"event_name"`
	IncomeItems  []BudgetPreviewItem `json:"income_items"`
	ExpenseItems []BudgetPreviewItem `json:"expense_items"`
	IncomeTotal  float64             `json:"income_total"`
	ExpenseTotal float64             `json:"expense_total"`
	NetAmount    float64             `json:"net_amount"`
}
