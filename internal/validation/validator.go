package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/tgyn-admin-api/internal/models"
)

// Accepted upload extensions
var (
	attendanceExtensions = map[string]bool{
		".xlsx": true,
		".xls":  true,
		".csv":  true,
	}
	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".bmp":  true,
	}
)

// commonProducts are receipt words that pass the name-shape test but are
// items, not people
var commonProducts = map[string]bool{
	"tax": true, "gst": true, "service": true, "fee": true, "rental": true,
	"food": true, "beverage": true, "equipment": true, "material": true,
	"printing": true, "marketing": true, "transport": true, "logistics": true,
	"registration": true, "donation": true, "sponsorship": true,
	"ticket": true, "merchandise": true, "sale": true, "purchase": true,
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator provides validation methods
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAttendanceFile validates an uploaded attendance file
func (v *Validator) ValidateAttendanceFile(filename string, size, maxSize int64) []ValidationError {
	return validateUpload(filename, size, maxSize, attendanceExtensions, ".xlsx, .xls, .csv")
}

// ValidateReceiptImage validates an uploaded receipt image
func (v *Validator) ValidateReceiptImage(filename string, size, maxSize int64) []ValidationError {
	return validateUpload(filename, size, maxSize, imageExtensions, ".jpg, .jpeg, .png, .gif, .webp, .bmp")
}

func validateUpload(filename string, size, maxSize int64, allowed map[string]bool, allowedList string) []ValidationError {
	var errors []ValidationError

	if filename == "" {
		errors = append(errors, ValidationError{Field: "file", Message: "filename is required"})
		return errors
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported file format, must be one of: %s", allowedList),
			Value:   ext,
		})
	}

	if size == 0 {
		errors = append(errors, ValidationError{Field: "file", Message: "file is empty"})
	} else if size > maxSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds maximum size of %d bytes", maxSize),
			Value:   size,
		})
	}

	return errors
}

// ValidateBudgetRequest validates a budget generation request
func (v *Validator) ValidateBudgetRequest(req *models.BudgetRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.EventName) == "" {
		errors = append(errors, ValidationError{Field: "event_name", Message: "event_name is required"})
	}
	if req.Participants < 0 {
		errors = append(errors, ValidationError{Field: "participants", Message: "participants must not be negative", Value: req.Participants})
	}
	if req.Volunteers < 0 {
		errors = append(errors, ValidationError{Field: "volunteers", Message: "volunteers must not be negative", Value: req.Volunteers})
	}

	errors = append(errors, validateBudgetItems("income_items", req.IncomeItems)...)
	errors = append(errors, validateBudgetItems("expense_items", req.ExpenseItems)...)

	return errors
}

func validateBudgetItems(field string, items []models.BudgetItem) []ValidationError {
	var errors []ValidationError
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d].description", field, i),
				Message: "description is required",
			})
		}
		if item.PerUnit < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d].per_unit", field, i),
				Message: "per_unit must not be negative",
				Value:   item.PerUnit,
			})
		}
		if item.Quantity < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d].quantity", field, i),
				Message: "quantity must not be negative",
				Value:   item.Quantity,
			})
		}
	}
	return errors
}

// ValidateSOARequest validates a statement-of-accounts generation request
func (v *Validator) ValidateSOARequest(req *models.SOARequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.EventName) == "" {
		errors = append(errors, ValidationError{Field: "event_name", Message: "event_name is required"})
	}

	for _, group := range []struct {
		field string
		items []models.SOAItem
	}{
		{"income_items", req.IncomeItems},
		{"expense_items", req.ExpenseItems},
	} {
		for i, item := range group.items {
			if strings.TrimSpace(item.Description) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("%s[%d].description", group.field, i),
					Message: "description is required",
				})
			}
		}
	}

	return errors
}

// LikelyPersonName reports whether a receipt line description looks like a
// person's name rather than a purchasable item: at most two words, letters
// only, none of them a common product word.
func LikelyPersonName(description string) bool {
	words := strings.Fields(strings.TrimSpace(description))
	if len(words) == 0 || len(words) > 2 {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		if commonProducts[strings.ToLower(w)] {
			return false
		}
	}
	return true
}
