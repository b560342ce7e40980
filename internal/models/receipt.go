package models

// ReceiptLineItem represents one line extracted from a receipt image
type ReceiptLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
	Category    string  `json:"category"`
}

// ReceiptExtraction is the structured result of vision extraction for a
// single receipt image
type ReceiptExtraction struct {
	MerchantName     string            `json:"merchant_name"`
	IncomeItems      []ReceiptLineItem `json:"income_items"`
	ExpenditureItems []ReceiptLineItem `json:"expenditure_items"`
	TotalIncome      float64           `json:"total_income"`
	TotalExpenditure float64           `json:"total_expenditure"`
	TaxAmount        float64           `json:"tax_amount"`
}

// StandardizedItem is a receipt line shaped for the statement-of-accounts
// form. Field names match the spreadsheet column headers.
type StandardizedItem struct {
	Description string  `json:"Description"`
	Qty         float64 `json:"Qty"`
	Actual      float64 `json:"Actual ($)"`
	Budgeted    float64 `json:"Budgeted ($)"`
	Category    string  `json:"Category"`
}
