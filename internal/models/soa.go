package models

// SOAItem represents one actual-vs-budget line in a statement of accounts
type SOAItem struct {
	Description string  `json:"description"`
	Actual      float64 `json:"actual"`
	Budgeted    float64 `json:"budgeted"`
}

// Variance returns actual minus budgeted for the line
func (i SOAItem) Variance() float64 {
	return i.Actual - i.Budgeted
}

// SOARequest represents a statement-of-accounts generation request.
// Receipts carries the standardized lines when the form was pre-filled
// from processed receipt images.
type SOARequest struct {
	EventName            string             `json:"event_name" binding:"required"`
	EventDate            string             `json:"event_date"`
	Venue                string             `json:"venue"`
	ActivityCode         string             `json:"activity_code"`
	IncomeItems          []SOAItem          `json:"income_items"`
	ExpenseItems         []SOAItem          `json:"expense_items"`
	Receipts             []StandardizedItem `json:"receipts"`
	PreparedBy           string             `json:"prepared_by"`
	DesignationPrepared  string             `json:"designation_prepared"`
	CertifiedBy          string             `json:"certified_by"`
	DesignationCertified string             `json:"designation_certified"`
}
