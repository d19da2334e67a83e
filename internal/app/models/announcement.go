package models

import "time"

// AnnouncementStatus is the lifecycle state of a CIE announcement.
type AnnouncementStatus string

const (
	AnnouncementScheduled AnnouncementStatus = "SCHEDULED"
	AnnouncementCompleted AnnouncementStatus = "COMPLETED"
	AnnouncementCancelled AnnouncementStatus = "CANCELLED"
)

// DefaultDurationMinutes is used when an announcement is saved without a duration.
const DefaultDurationMinutes = 60

// Announcement schedules one CIE of a subject. There is at most one per (subject, CIE number).
type Announcement struct {
	ID               int64              `json:"id" db:"id"`
	SubjectID        int64              `json:"subjectId" db:"subject_id"`
	CIENumber        int                `json:"cieNumber" db:"cie_number"`
	ScheduledDate    time.Time          `json:"scheduledDate" db:"scheduled_date"`
	StartTime        string             `json:"startTime,omitempty" db:"start_time"`
	DurationMinutes  int                `json:"durationMinutes" db:"duration_minutes"`
	ExamRoom         string             `json:"examRoom,omitempty" db:"exam_room"`
	Instructions     string             `json:"instructions,omitempty" db:"instructions"`
	SyllabusCoverage string             `json:"syllabusCoverage,omitempty" db:"syllabus_coverage"`
	Status           AnnouncementStatus `json:"status" db:"status"`
	FacultyID        *int64             `json:"facultyId,omitempty" db:"faculty_id"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`

	SubjectName string `json:"subjectName,omitempty"`
	SubjectCode string `json:"subjectCode,omitempty"`
	Department  string `json:"department,omitempty"`
	Semester    int    `json:"semester,omitempty"`
}
