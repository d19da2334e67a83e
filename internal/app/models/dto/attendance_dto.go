package dto

// AttendanceEntry is one student's status for the day.
type AttendanceEntry struct {
	StudentID int64  `json:"studentId" binding:"required,gt=0"`
	Status    string `json:"status" binding:"required,oneof=PRESENT ABSENT LATE"`
}

// AttendanceRequest records a class session.
type AttendanceRequest struct {
	SubjectID int64             `json:"subjectId" binding:"required,gt=0"`
	Date      string            `json:"date" binding:"required,datetime=2006-01-02"`
	Entries   []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// AttendanceSummary is a student's attendance in one subject.
type AttendanceSummary struct {
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	Present     int     `json:"present"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
}
