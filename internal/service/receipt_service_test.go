package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tgyn-admin-api/internal/mocks"
	"github.com/tgyn-admin-api/internal/service"
)

const receiptOneJSON = `{
	"merchant_name": "ABC Trading",
	"income_items": [
		{"description": "Registration collection", "quantity": 2, "total_amount": 40, "category": "registration_fees"}
	],
	"expenditure_items": [
		{"description": "Hall Rental Fee", "quantity": 1, "total_amount": 150, "category": ""}
	],
	"total_income": 40,
	"total_expenditure": 150,
	"tax_amount": 7.5
}`

const receiptTwoJSON = `{
	"merchant_name": "XYZ Catering",
	"income_items": [
		{"description": "Shannon Yap", "quantity": 1, "total_amount": 20, "category": "donations"}
	],
	"expenditure_items": [
		{"description": "Hall Rental Fee", "quantity": 1, "total_amount": 150, "category": "logistics"},
		{"description": "", "total_amount": 12, "category": ""}
	],
	"tax_amount": 0
}`

func TestReceiptService_ProcessNotConfigured(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	_, err := env.services.Receipt.Process(context.Background(), []service.ReceiptImage{
		{Filename: "receipt.jpg", Data: []byte("image")},
	})
	if !errors.Is(err, service.ErrAINotConfigured) {
		t.Errorf("Expected ErrAINotConfigured, got %v", err)
	}
}

func TestReceiptService_ProcessMergesBatch(t *testing.T) {
	generator := &mocks.MockContentGenerator{
		VisionFunc: func(prompt string, image []byte, mimeType string) (string, error) {
			if string(image) == "first" {
				return "```json\n" + receiptOneJSON + "\n```", nil
			}
			return receiptTwoJSON, nil
		},
	}
	env := newTestEnv(nil, generator, nil)

	result, err := env.services.Receipt.Process(context.Background(), []service.ReceiptImage{
		{Filename: "one.jpg", Data: []byte("first")},
		{Filename: "two.png", Data: []byte("second")},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if result.Processed != 2 || result.Skipped != 0 {
		t.Errorf("Expected 2 processed, 0 skipped, got %d/%d", result.Processed, result.Skipped)
	}

	// The person-name line from the second receipt is dropped
	if len(result.Income) != 1 {
		t.Fatalf("Expected 1 income item, got %+v", result.Income)
	}
	income := result.Income[0]
	if income.Description != "Registration collection" || income.Qty != 2 || income.Actual != 40 || income.Category != "registration_fees" {
		t.Errorf("Unexpected income item %+v", income)
	}

	// The duplicated rental line collapses, the blank line picks up
	// fallbacks, and the first receipt's tax becomes its own line
	if len(result.Expenditure) != 3 {
		t.Fatalf("Expected 3 expenditure items, got %+v", result.Expenditure)
	}
	rental := result.Expenditure[0]
	if rental.Description != "Hall Rental Fee" || rental.Actual != 150 || rental.Category != "misc_expense" {
		t.Errorf("Unexpected rental item %+v", rental)
	}
	tax := result.Expenditure[1]
	if tax.Description != "Tax - ABC Trading" || tax.Actual != 7.5 || tax.Qty != 1 || tax.Category != "tax" {
		t.Errorf("Unexpected tax item %+v", tax)
	}
	unknown := result.Expenditure[2]
	if unknown.Description != "Unknown Expense Item" || unknown.Qty != 1 || unknown.Actual != 12 || unknown.Category != "misc_expense" {
		t.Errorf("Unexpected fallback item %+v", unknown)
	}

	if generator.VisionCalls != 2 {
		t.Errorf("Expected 2 vision calls, got %d", generator.VisionCalls)
	}
}

func TestReceiptService_ProcessTaxWithoutMerchant(t *testing.T) {
	generator := &mocks.MockContentGenerator{
		VisionFunc: func(prompt string, image []byte, mimeType string) (string, error) {
			return `{"income_items": [], "expenditure_items": [{"description": "Stationery", "quantity": 1, "total_amount": 9, "category": "materials"}], "tax_amount": 0.63}`, nil
		},
	}
	env := newTestEnv(nil, generator, nil)

	result, err := env.services.Receipt.Process(context.Background(), []service.ReceiptImage{
		{Filename: "receipt.jpg", Data: []byte("image")},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Expenditure) != 2 {
		t.Fatalf("Expected 2 expenditure items, got %+v", result.Expenditure)
	}
	tax := result.Expenditure[1]
	if tax.Description != "Tax - Unknown Merchant" || tax.Actual != 0.63 {
		t.Errorf("Unexpected tax item %+v", tax)
	}
}

func TestReceiptService_ProcessCountsUnreadableAsSkipped(t *testing.T) {
	generator := &mocks.MockContentGenerator{
		VisionFunc: func(prompt string, image []byte, mimeType string) (string, error) {
			if string(image) == "bad" {
				return "this photo is too blurry to read", nil
			}
			return receiptOneJSON, nil
		},
	}
	env := newTestEnv(nil, generator, nil)

	result, err := env.services.Receipt.Process(context.Background(), []service.ReceiptImage{
		{Filename: "blurry.jpg", Data: []byte("bad")},
		{Filename: "clear.jpg", Data: []byte("good")},
	})
	if err != nil {
		t.Fatalf("Process should not fail the batch, got %v", err)
	}
	if result.Processed != 1 || result.Skipped != 1 {
		t.Errorf("Expected 1 processed, 1 skipped, got %d/%d", result.Processed, result.Skipped)
	}
	if len(result.Expenditure) == 0 {
		t.Error("Expected the readable receipt's items in the result")
	}
}

func TestReceiptService_ProcessAllUnreadable(t *testing.T) {
	generator := &mocks.MockContentGenerator{VisionError: fmt.Errorf("quota exhausted")}
	env := newTestEnv(nil, generator, nil)

	result, err := env.services.Receipt.Process(context.Background(), []service.ReceiptImage{
		{Filename: "one.jpg", Data: []byte("a")},
		{Filename: "two.jpg", Data: []byte("b")},
	})
	if err != nil {
		t.Fatalf("Process should not fail the batch, got %v", err)
	}
	if result.Processed != 0 || result.Skipped != 2 {
		t.Errorf("Expected 0 processed, 2 skipped, got %d/%d", result.Processed, result.Skipped)
	}
	if result.Income == nil || result.Expenditure == nil {
		t.Error("Expected empty, non-nil item lists")
	}
	if len(result.Income) != 0 || len(result.Expenditure) != 0 {
		t.Errorf("Expected no items, got %+v / %+v", result.Income, result.Expenditure)
	}
}
