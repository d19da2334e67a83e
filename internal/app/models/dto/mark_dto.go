package dto

import "github.com/yigit/iatracker/internal/app/analytics"

// MarkEntry is one mark to write in a batch.
type MarkEntry struct {
	StudentID int64    `json:"studentId" binding:"required,gt=0"`
	SubjectID int64    `json:"subjectId" binding:"required,gt=0"`
	CIEType   string   `json:"cieType" binding:"required,cietype"`
	Marks     *float64 `json:"marks" binding:"omitempty,gte=0"`
	MaxMarks  float64  `json:"maxMarks" binding:"omitempty,gt=0"`
}

// BatchMarksRequest carries the marks entered by a faculty member.
type BatchMarksRequest struct {
	Entries []MarkEntry `json:"entries" binding:"required,min=1,dive"`
}

// BatchMarksResult reports what happened to each entry of a batch.
type BatchMarksResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Locked  int `json:"locked"`
}

// MarkWorkflowRequest selects the marks of one CIE of one subject.
type MarkWorkflowRequest struct {
	SubjectID int64  `json:"subjectId" binding:"required,gt=0"`
	CIEType   string `json:"cieType" binding:"required,cietype"`
}

// MarkWorkflowResult reports how many records changed status.
type MarkWorkflowResult struct {
	SubjectID int64                `json:"subjectId"`
	CIEType   string               `json:"cieType"`
	Status    analytics.MarkStatus `json:"status"`
	Affected  int64                `json:"affected"`
}
