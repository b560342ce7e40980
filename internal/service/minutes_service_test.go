package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/tgyn-admin-api/internal/mocks"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/service"
)

const extractionJSON = `{
	"meeting_title": "Quarterly Review",
	"agenda_items": [
		{"item_number": 1, "title": "Call to Order", "description": "Opening remarks.", "action_items": []},
		{"item_number": 2, "title": "Budget Report", "description": "Camp budget approved.", "action_items": ["Publish updated figures"]}
	],
	"extracted_date": "2025-09-21T18:30",
	"extracted_location": "Teck Ghee CC",
	"extracted_company": "TGYN"
}`

// wordXML unpacks the main document part from generated .docx bytes
func wordXML(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("generated document is not a zip archive: %v", err)
	}
	for _, part := range zr.File {
		if part.Name != "word/document.xml" {
			continue
		}
		rc, err := part.Open()
		if err != nil {
			t.Fatalf("failed to open document part: %v", err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read document part: %v", err)
		}
		return string(content)
	}
	t.Fatal("word/document.xml missing from archive")
	return ""
}

func TestMinutesService_ExtractParsesResponse(t *testing.T) {
	generator := &mocks.MockContentGenerator{TextResponse: "```json\n" + extractionJSON + "\n```"}
	env := newTestEnv(nil, generator, nil)

	extraction := env.services.Minutes.Extract(context.Background(), "Quarterly review notes")

	if extraction.MeetingTitle != "Quarterly Review" {
		t.Errorf("Expected title Quarterly Review, got %q", extraction.MeetingTitle)
	}
	if len(extraction.AgendaItems) != 2 {
		t.Fatalf("Expected 2 agenda items, got %d", len(extraction.AgendaItems))
	}
	if extraction.AgendaItems[1].ActionItems[0] != "Publish updated figures" {
		t.Errorf("Unexpected action items %v", extraction.AgendaItems[1].ActionItems)
	}
	if extraction.ExtractedLocation != "Teck Ghee CC" {
		t.Errorf("Expected extracted location, got %q", extraction.ExtractedLocation)
	}

	if len(generator.TextPrompts) != 1 || !strings.Contains(generator.TextPrompts[0], "Quarterly review notes") {
		t.Error("Expected the meeting content appended to the extraction prompt")
	}
}

func TestMinutesService_ExtractFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		generator service.ContentGenerator
	}{
		{name: "no generator", generator: nil},
		{name: "generation error", generator: &mocks.MockContentGenerator{TextError: fmt.Errorf("model overloaded")}},
		{name: "unparseable response", generator: &mocks.MockContentGenerator{TextResponse: "I could not analyse this presentation."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(nil, tt.generator, nil)

			extraction := env.services.Minutes.Extract(context.Background(), "raw notes about the camp")
			if extraction == nil {
				t.Fatal("Extract must always return a structure")
			}
			if extraction.MeetingTitle != "Meeting" {
				t.Errorf("Expected fallback title Meeting, got %q", extraction.MeetingTitle)
			}
			if len(extraction.AgendaItems) != 1 || extraction.AgendaItems[0].Title != "General Discussion" {
				t.Fatalf("Expected single General Discussion item, got %+v", extraction.AgendaItems)
			}
			if extraction.AgendaItems[0].Description != "raw notes about the camp" {
				t.Errorf("Expected raw content carried into the fallback, got %q", extraction.AgendaItems[0].Description)
			}
		})
	}
}

func TestMinutesService_GenerateRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	_, err := env.services.Minutes.Generate(context.Background(), &models.MinutesRequest{MeetingContent: "   "})
	if !errors.Is(err, service.ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestMinutesService_GenerateDocument(t *testing.T) {
	generator := &mocks.MockContentGenerator{TextResponse: extractionJSON}
	grid := [][]string{
		{"", "Name", "2025-01-10"},
		{"", "Alice Tan", "Present"},
		{"", "Bob Ng", "Not Present"},
	}
	env := newTestEnv(grid, generator, nil)
	env.members.Members = []*models.Member{
		{Name: "Alice Tan", AddressAs: "Ms"},
		{Name: "Bob Ng", AddressAs: "Mr"},
	}

	req := &models.MinutesRequest{
		MeetingContent: "Quarterly review notes",
		MeetingChair:   "Jordan Lee",
	}
	doc, err := env.services.Minutes.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Title, date and location come from the extraction when the form
	// leaves them blank
	if doc.Filename != "Quarterly_Review_Minutes.docx" {
		t.Errorf("Expected filename Quarterly_Review_Minutes.docx, got %q", doc.Filename)
	}
	if !strings.Contains(doc.ContentType, "wordprocessingml") {
		t.Errorf("Expected docx content type, got %q", doc.ContentType)
	}

	xml := wordXML(t, doc.Data)
	wantFragments := []string{
		"Quarterly Review",
		"Attendance",
		"Present",
		"Ms Alice Tan",
		"Absent with Apologies",
		"Mr Bob Ng",
		"September 21, 2025",
		"18:30",
		"Teck Ghee CC",
		"1. Call to Order",
		"The meeting was called to order by Jordan Lee at 18:30.",
		"2. Executive Reports",
		"Budget Report",
		"• Camp budget approved.",
		"• Publish updated figures",
		"3. Ongoing Issues",
		"4. New Issues",
		"New Item 1",
		"5. Next Meeting",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(xml, fragment) {
			t.Errorf("Document missing %q", fragment)
		}
	}
}

func TestMinutesService_GenerateUsesFormAttendanceFallback(t *testing.T) {
	env := newTestEnv(nil, nil, nil)
	env.members.ListError = fmt.Errorf("sheet unavailable")

	req := &models.MinutesRequest{
		Title:          "Committee Sync",
		MeetingContent: "sync notes",
		Attendees:      "Alice Tan, Bob Ng",
		AbsentMembers:  "Cara Lim",
	}
	doc, err := env.services.Minutes.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	xml := wordXML(t, doc.Data)
	// Form names carry no salutation, so the line doubles the name
	if !strings.Contains(xml, "Alice Tan Alice Tan") {
		t.Error("Expected form attendees rendered in the attendance block")
	}
	if !strings.Contains(xml, "Cara Lim Cara Lim") {
		t.Error("Expected form absentees rendered in the attendance block")
	}
}

func TestMinutesService_GenerateDefaultTitle(t *testing.T) {
	env := newTestEnv(nil, nil, nil)

	doc, err := env.services.Minutes.Generate(context.Background(), &models.MinutesRequest{MeetingContent: "short notes"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// The fallback extraction titles the meeting, so the filename picks
	// that up rather than the generic default
	if doc.Filename != "Meeting_Minutes.docx" {
		t.Errorf("Expected filename Meeting_Minutes.docx, got %q", doc.Filename)
	}
}
