package models

import "github.com/yigit/iatracker/internal/app/analytics"

// Subject is a row of the subjects table, joined with the instructor's name when loaded.
type Subject struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Code           string `json:"code" db:"code"`
	Department     string `json:"department" db:"department"`
	Semester       int    `json:"semester" db:"semester"`
	InstructorID   *int64 `json:"instructorId,omitempty" db:"instructor_id"`
	InstructorName string `json:"instructorName,omitempty"`
}

// Ref returns the view of the subject used by the analytics engine.
func (s Subject) Ref() analytics.SubjectRef {
	return analytics.SubjectRef{ID: s.ID, Name: s.Name, Code: s.Code}
}

// TaughtBy reports whether userID is the subject's instructor.
func (s Subject) TaughtBy(userID int64) bool {
	return s.InstructorID != nil && *s.InstructorID == userID
}

// SubjectRefs converts subjects for the analytics engine, keeping their order.
func SubjectRefs(subjects []*Subject) []analytics.SubjectRef {
	refs := make([]analytics.SubjectRef, 0, len(subjects))
	for _, s := range subjects {
		refs = append(refs, s.Ref())
	}
	return refs
}
