package models

// Attendance statuses stored in the attendance table. An empty cell reads
// back as StatusNotPresent.
const (
	StatusPresent    = "Present"
	StatusNotPresent = "Not Present"
)

// SubmitAttendanceRequest represents a manual attendance submission
type SubmitAttendanceRequest struct {
	Date       string            `json:"date" binding:"required"`
	Attendance map[string]string `json:"attendance" binding:"required"`
}

// AttendanceResponse is the API response for attendance reads
type AttendanceResponse struct {
	Date       string            `json:"date"`
	Attendance map[string]string `json:"attendance"`
}
