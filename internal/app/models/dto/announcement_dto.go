package dto

// AnnouncementRequest schedules or reschedules one CIE of a subject.
type AnnouncementRequest struct {
	SubjectID        int64  `json:"subjectId" binding:"omitempty,gt=0"`
	CIENumber        int    `json:"cieNumber" binding:"required,min=1,max=5"`
	ScheduledDate    string `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
	StartTime        string `json:"startTime" binding:"omitempty"`
	DurationMinutes  int    `json:"durationMinutes" binding:"omitempty,min=1"`
	ExamRoom         string `json:"examRoom"`
	Instructions     string `json:"instructions"`
	SyllabusCoverage string `json:"syllabusCoverage"`
	Status           string `json:"status" binding:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}
