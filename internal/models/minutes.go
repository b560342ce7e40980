package models

// AgendaItem represents one extracted agenda item
type AgendaItem struct {
	ItemNumber  int      `json:"item_number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActionItems []string `json:"action_items"`
}

// MinutesExtraction is the structured result of agenda extraction from
// raw meeting notes
type MinutesExtraction struct {
	MeetingTitle      string       `json:"meeting_title"`
	AgendaItems       []AgendaItem `json:"agenda_items"`
	ExtractedDate     string       `json:"extracted_date"`
	ExtractedLocation string       `json:"extracted_location"`
	ExtractedCompany  string       `json:"extracted_company"`
}

// MinutesRequest represents a minutes generation request (multipart form)
type MinutesRequest struct {
	Title          string `form:"title"`
	MeetingContent string `form:"meeting_content" binding:"required"`
	DateTime       string `form:"date_time"`
	Company        string `form:"company"`
	Location       string `form:"location"`
	Attendees      string `form:"attendees"`
	AbsentMembers  string `form:"absent"`
	MeetingChair   string `form:"meeting_chair"`
}
