package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/validation"
)

const receiptPrompt = `You are a receipt analysis expert for event management. Analyze this receipt and categorize items as INCOME or EXPENDITURE.

IMPORTANT: Return ONLY valid JSON with this exact structure:
{
    "merchant_name": "Store or restaurant name",
    "income_items": [
        {
            "description": "Item name (e.g., 'Registration Fee', 'Donation')",
            "quantity": 1,
            "total_amount": 50.00,
            "category": "registration_fees"
        }
    ],
    "expenditure_items": [
        {
            "description": "Item name (e.g., 'Chicken Rice', 'Venue Rental')",
            "quantity": 1,
            "total_amount": 10.50,
            "category": "food_beverage"
        }
    ],
    "total_income": 50.00,
    "total_expenditure": 10.50,
    "tax_amount": 0.80
}

INCOME Categories: registration_fees, donations, sponsorships, ticket_sales, merchandise_sales
EXPENDITURE Categories: food_beverage, logistics, transport, equipment, materials, printing, marketing

Rules:
1. Categorize each item as either INCOME or EXPENDITURE based on context
2. Use clear, descriptive names for PRODUCTS, SERVICES, or TRANSACTIONS only
3. DO NOT extract personal names (e.g., "Shannon Yap", "Cynthia", "John Doe") as items - these are people, not items
4. DO NOT extract customer names, staff names, or any person names as item descriptions
5. Only extract actual products, services, or transaction types (e.g., "Chicken Rice", "Venue Rental", "Registration Fee")
6. Quantity must be a number (default to 1 if not shown)
7. Amounts must be numbers without currency symbols
8. Most receipts are EXPENDITURE (purchases), but some might be INCOME (collections)
9. Always include tax_amount if visible on the receipt (GST, service tax, etc.)
10. If tax is included in item prices, still extract it separately if shown
11. Return ONLY the JSON, no other text`

// receiptService is the concrete implementation of ReceiptService
type receiptService struct {
	generator ContentGenerator
	log       zerolog.Logger
}

// newReceiptService creates a new receipt extraction service. generator may
// be nil, in which case Process fails with ErrAINotConfigured.
func newReceiptService(generator ContentGenerator, log zerolog.Logger) ReceiptService {
	return &receiptService{
		generator: generator,
		log:       log.With().Str("service", "receipt").Logger(),
	}
}

// Process extracts line items from a batch of receipt photos. Receipts the
// model cannot read are counted as skipped rather than failing the batch.
func (s *receiptService) Process(ctx context.Context, images []ReceiptImage) (*ReceiptResult, error) {
	if s.generator == nil {
		return nil, ErrAINotConfigured
	}

	var extractions []*models.ReceiptExtraction
	skipped := 0
	for _, img := range images {
		extraction, err := s.extract(ctx, img)
		if err != nil {
			s.log.Warn().Err(err).Str("filename", img.Filename).Msg("Failed to process receipt")
			skipped++
			continue
		}
		extractions = append(extractions, extraction)
	}

	result := s.merge(extractions)
	result.Processed = len(extractions)
	result.Skipped = skipped
	s.log.Info().Int("processed", result.Processed).Int("skipped", result.Skipped).
		Int("income", len(result.Income)).Int("expenditure", len(result.Expenditure)).
		Msg("Receipt batch processed")
	return result, nil
}

func (s *receiptService) extract(ctx context.Context, img ReceiptImage) (*models.ReceiptExtraction, error) {
	text, err := s.generator.GenerateVision(ctx, receiptPrompt, img.Data, mimeTypeFor(img.Filename))
	if err != nil {
		return nil, err
	}

	var extraction models.ReceiptExtraction
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return &extraction, nil
}

// merge combines per-receipt extractions, dropping likely person names,
// deduplicating by description and amount, and adding one tax line per
// receipt that reported tax
func (s *receiptService) merge(extractions []*models.ReceiptExtraction) *ReceiptResult {
	result := &ReceiptResult{
		Income:      []models.StandardizedItem{},
		Expenditure: []models.StandardizedItem{},
	}
	seenIncome := make(map[string]bool)
	seenExpenditure := make(map[string]bool)

	for _, r := range extractions {
		for _, item := range r.IncomeItems {
			if std, ok := s.standardize(item, "Unknown Income Item", "misc_income", seenIncome); ok {
				result.Income = append(result.Income, std)
			}
		}
		for _, item := range r.ExpenditureItems {
			if std, ok := s.standardize(item, "Unknown Expense Item", "misc_expense", seenExpenditure); ok {
				result.Expenditure = append(result.Expenditure, std)
			}
		}
		if r.TaxAmount > 0 {
			merchant := strings.TrimSpace(r.MerchantName)
			if merchant == "" {
				merchant = "Unknown Merchant"
			}
			description := "Tax - " + merchant
			key := dedupKey(description, r.TaxAmount)
			if !seenExpenditure[key] {
				seenExpenditure[key] = true
				result.Expenditure = append(result.Expenditure, models.StandardizedItem{
					Description: description,
					Qty:         1,
					Actual:      r.TaxAmount,
					Category:    "tax",
				})
			}
		}
	}
	return result
}

func (s *receiptService) standardize(item models.ReceiptLineItem, fallbackDescription, fallbackCategory string, seen map[string]bool) (models.StandardizedItem, bool) {
	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = fallbackDescription
	}
	if validation.LikelyPersonName(description) {
		s.log.Debug().Str("description", description).Msg("Skipping likely person name")
		return models.StandardizedItem{}, false
	}

	key := dedupKey(description, item.TotalAmount)
	if seen[key] {
		return models.StandardizedItem{}, false
	}
	seen[key] = true

	category := item.Category
	if category == "" {
		category = fallbackCategory
	}
	qty := item.Quantity
	if qty == 0 {
		qty = 1
	}
	return models.StandardizedItem{
		Description: description,
		Qty:         qty,
		Actual:      item.TotalAmount,
		Budgeted:    0,
		Category:    category,
	}, true
}

func dedupKey(description string, amount float64) string {
	return fmt.Sprintf("%s_%v", strings.ToLower(description), amount)
}

// mimeTypeFor maps an upload filename to the image MIME type sent to the
// vision model
func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
