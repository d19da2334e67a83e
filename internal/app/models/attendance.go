package models

import "time"

// AttendanceStatus is the recorded presence of a student in one class.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// CountsAsPresent reports whether the status counts towards attendance percentage.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// Attendance is a row of the attendance table.
type Attendance struct {
	ID        int64            `json:"id" db:"id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	SubjectID int64            `json:"subjectId" db:"subject_id"`
	Date      time.Time        `json:"date" db:"date"`
	Status    AttendanceStatus `json:"status" db:"status"`
	FacultyID *int64           `json:"facultyId,omitempty" db:"faculty_id"`

	StudentName string `json:"studentName,omitempty"`
	RegNo       string `json:"regNo,omitempty"`
	SubjectName string `json:"subjectName,omitempty"`
}
