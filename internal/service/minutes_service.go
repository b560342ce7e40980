package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/docx"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

const minutesPrompt = `You are an expert at analyzing meeting information and extracting structured data for meeting minutes.

Analyze the following meeting content and extract:
1. Meeting title/type
2. Agenda items (list of topics discussed)
3. Key discussion points for each agenda item
4. Decisions made
5. Action items (if any)
6. Any dates, locations, or other relevant details mentioned

Return ONLY valid JSON with this exact structure:
{
    "meeting_title": "Meeting title or type",
    "agenda_items": [
        {
            "item_number": 1,
            "title": "Agenda item title (e.g., 'Call to Order', 'Approval of Agenda', 'Chair's Report')",
            "description": "Detailed description of what was discussed or decided for this agenda item",
            "action_items": ["Action item 1", "Action item 2"]
        }
    ],
    "extracted_date": "Date mentioned in presentation (if any)",
    "extracted_location": "Location mentioned (if any)",
    "extracted_company": "Company/organization name (if any)"
}

Rules:
1. Standardize agenda items to common meeting formats (Call to Order, Approval of Agenda, Approval of Previous Meeting Minutes, Chair's Report, CEO's Report, Committee Reports, Old Business, New Business, Other Business, Adjournment)
2. If agenda items are not explicitly stated, infer them from the content structure
3. Provide detailed descriptions for each agenda item based on the presentation content
4. Extract action items if mentioned
5. Return ONLY the JSON, no other text`

const (
	headingShade = "F8D7DA"
	headingColor = "323232"
)

// minutesService is the concrete implementation of MinutesService
type minutesService struct {
	members    repository.MemberRepository
	attendance AttendanceService
	generator  ContentGenerator
	log        zerolog.Logger
}

// newMinutesService creates a new meeting-minutes service. generator may be
// nil, in which case extraction falls back to a single-item structure.
func newMinutesService(members repository.MemberRepository, attendance AttendanceService, generator ContentGenerator, log zerolog.Logger) MinutesService {
	return &minutesService{
		members:    members,
		attendance: attendance,
		generator:  generator,
		log:        log.With().Str("service", "minutes").Logger(),
	}
}

// Extract turns raw meeting notes into a structured agenda. It never fails:
// when the AI backend is unavailable or returns something unusable the
// result is a single General Discussion item carrying the raw content.
func (s *minutesService) Extract(ctx context.Context, content string) *models.MinutesExtraction {
	if s.generator == nil {
		s.log.Warn().Msg("AI extraction unavailable, using fallback structure")
		return fallbackExtraction(content)
	}

	text, err := s.generator.GenerateText(ctx, minutesPrompt+"\n\n"+content)
	if err != nil {
		s.log.Warn().Err(err).Msg("AI extraction failed, using fallback structure")
		return fallbackExtraction(content)
	}

	var extraction models.MinutesExtraction
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &extraction); err != nil {
		s.log.Warn().Err(err).Msg("Failed to parse extraction response, using fallback structure")
		return fallbackExtraction(content)
	}
	return &extraction
}

// Generate runs the full pipeline: extract the agenda, fill gaps in the
// request from the extraction, then render the Word document
func (s *minutesService) Generate(ctx context.Context, req *models.MinutesRequest) (*Document, error) {
	content := strings.TrimSpace(req.MeetingContent)
	if content == "" {
		return nil, ErrEmptyContent
	}

	extraction := s.Extract(ctx, content)
	if req.DateTime == "" {
		req.DateTime = extraction.ExtractedDate
	}
	if req.Location == "" {
		req.Location = extraction.ExtractedLocation
	}
	if req.Company == "" {
		req.Company = extraction.ExtractedCompany
	}
	if req.Title == "" {
		req.Title = extraction.MeetingTitle
	}

	data, err := s.render(ctx, req, extraction)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = "Meeting Minutes"
	}
	doc := &Document{
		Filename:    sanitizeFilename(title) + "_Minutes.docx",
		ContentType: docxContentType,
		Data:        data,
	}
	s.log.Info().Str("title", title).Int("bytes", len(data)).Msg("Meeting minutes generated")
	return doc, nil
}

func fallbackExtraction(content string) *models.MinutesExtraction {
	description := truncate(content, 1000)
	if description == "" {
		description = "No content provided. Please fill in meeting details manually."
	}
	return &models.MinutesExtraction{
		MeetingTitle: "Meeting",
		AgendaItems: []models.AgendaItem{{
			ItemNumber:  1,
			Title:       "General Discussion",
			Description: description,
			ActionItems: []string{},
		}},
	}
}

// stripCodeFences removes markdown fencing from a model response and clamps
// it to the outermost JSON object
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)
	if start, end := strings.Index(t, "{"), strings.LastIndex(t, "}"); start != -1 && end > start {
		t = t[start : end+1]
	}
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// splitDateTime turns a "2006-01-02T15:04" form value into a long date and
// a short time, passing unparseable input through as-is
func splitDateTime(raw string) (dateStr, timeStr string) {
	if raw == "" {
		return "", ""
	}
	datePart := raw
	if i := strings.Index(raw, "T"); i >= 0 {
		datePart = raw[:i]
		timeStr = raw[i+1:]
		if len(timeStr) > 5 {
			timeStr = timeStr[:5]
		}
	}
	if t, err := time.Parse("2006-01-02", datePart); err == nil {
		dateStr = t.Format("January 02, 2006")
	} else {
		dateStr = datePart
	}
	return dateStr, timeStr
}

// attendee is one roster entry resolved for the attendance block
type attendee struct {
	name      string
	addressAs string
}

// sheetAttendance joins the roster with the most recent attendance record
// and splits it into present and absent lists in roster order
func (s *minutesService) sheetAttendance(ctx context.Context) (present, absent []attendee, err error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	record, err := s.attendance.MostRecent(ctx)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]string, len(record.Attendance))
	for name, status := range record.Attendance {
		byName[strings.ToLower(name)] = status
	}
	for _, m := range members {
		status, ok := byName[strings.ToLower(m.Name)]
		if !ok {
			continue
		}
		a := attendee{name: m.Name, addressAs: m.AddressAs}
		if strings.EqualFold(status, models.StatusPresent) {
			present = append(present, a)
		} else {
			absent = append(absent, a)
		}
	}
	s.log.Info().Str("date", record.Date).Int("present", len(present)).Int("absent", len(absent)).Msg("Loaded attendance for minutes")
	return present, absent, nil
}

// gatherAttendance prefers the spreadsheet, falling back to the comma
// separated names on the request when the sheet is unreachable
func (s *minutesService) gatherAttendance(ctx context.Context, req *models.MinutesRequest) (present, absent []attendee) {
	present, absent, err := s.sheetAttendance(ctx)
	if err == nil {
		return present, absent
	}
	s.log.Warn().Err(err).Msg("Failed to load attendance from sheets, using form values")

	for _, name := range splitNames(req.Attendees) {
		present = append(present, attendee{name: name, addressAs: name})
	}
	for _, name := range splitNames(req.AbsentMembers) {
		absent = append(absent, attendee{name: name, addressAs: name})
	}
	return present, absent
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// render lays out the minutes document: title, attendance block, meeting
// metadata and the five numbered sections
func (s *minutesService) render(ctx context.Context, req *models.MinutesRequest, extraction *models.MinutesExtraction) ([]byte, error) {
	doc := docx.New()
	dateStr, timeStr := splitDateTime(req.DateTime)

	title := req.Title
	if title == "" {
		title = "Meeting Minutes"
	}
	doc.AddParagraph().Center().AddText(title).Bold().Size(18).Color(headingColor)
	doc.AddParagraph().Center().AddText(strings.Repeat("_", 60)).Size(10).Color("646464")
	doc.AddParagraph()

	doc.AddParagraph().Center().Shade(headingShade).AddText("Attendance").Bold().Size(14).Color(headingColor)
	present, absent := s.gatherAttendance(ctx, req)
	if len(present) > 0 {
		doc.AddParagraph().Center().AddText("Present").Bold().Size(12).Color(headingColor)
		for _, a := range present {
			doc.AddParagraph().Center().AddText(a.addressAs + " " + a.name).Size(11)
		}
	}
	if len(absent) > 0 {
		doc.AddParagraph().Center().AddText("Absent with Apologies").Bold().Size(12).Color(headingColor)
		for _, a := range absent {
			doc.AddParagraph().Center().AddText(a.addressAs + " " + a.name).Size(11)
		}
	}
	doc.AddParagraph()

	writeLabeledLine(doc, "Date:", dateStr)
	writeLabeledLine(doc, "Time:", timeStr)
	writeLabeledLine(doc, "Location:", req.Location)
	doc.AddParagraph()

	items := extraction.AgendaItems
	if len(items) == 0 {
		items = []models.AgendaItem{{ItemNumber: 1, Title: "General Discussion", Description: "Meeting discussion"}}
	}

	writeSectionHeader(doc, 1, "Call to Order")
	chair := req.MeetingChair
	if chair == "" {
		chair = "[Chairperson's Name]"
	}
	timeDisplay := timeStr
	if timeDisplay == "" {
		timeDisplay = "[Time]"
	}
	doc.AddParagraph().AddText(fmt.Sprintf("The meeting was called to order by %s at %s.", chair, timeDisplay)).Size(11)
	doc.AddParagraph()

	writeSectionHeader(doc, 2, "Executive Reports")
	reports := items
	if len(reports) > 5 {
		reports = reports[:5]
	}
	for _, item := range reports {
		writeAgendaItem(doc, item)
	}
	doc.AddParagraph()

	writeSectionHeader(doc, 3, "Ongoing Issues")
	doc.AddParagraph().AddText("Items that were set aside in previous meetings.").Size(11)
	doc.AddParagraph()

	writeSectionHeader(doc, 4, "New Issues")
	var newItems []models.AgendaItem
	if len(items) > 5 {
		newItems = items[5:]
	}
	if len(newItems) == 0 {
		newItems = []models.AgendaItem{
			{Title: "New Item 1", Description: "Discussion led by [Name].", ActionItems: []string{"Action items and responsible persons."}},
			{Title: "New Item 2", Description: "Discussion led by [Name].", ActionItems: []string{"Action items and responsible persons."}},
		}
	}
	if len(newItems) > 2 {
		newItems = newItems[:2]
	}
	for _, item := range newItems {
		writeAgendaItem(doc, item)
	}
	doc.AddParagraph()

	writeSectionHeader(doc, 5, "Next Meeting")
	writeLabeledLine(doc, "Date:", "")
	writeLabeledLine(doc, "Time:", "")
	writeLabeledLine(doc, "Location:", "")

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return data, nil
}

func writeSectionHeader(doc *docx.Document, number int, title string) {
	doc.AddParagraph().Shade(headingShade).AddText(fmt.Sprintf("%d. %s", number, title)).Bold().Size(12).Color(headingColor)
}

func writeLabeledLine(doc *docx.Document, label, value string) {
	p := doc.AddParagraph()
	p.AddText(label + " ").Bold().Size(11)
	p.AddText(value).Size(11)
}

func writeAgendaItem(doc *docx.Document, item models.AgendaItem) {
	doc.AddParagraph().AddText(item.Title).Bold().Size(11)
	doc.AddParagraph().AddText("• " + item.Description).Size(11)
	actions := item.ActionItems
	if len(actions) > 2 {
		actions = actions[:2]
	}
	for _, action := range actions {
		doc.AddParagraph().AddText("• " + action).Size(11)
	}
}
