package dto

import (
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
)

// CieTrendResponse wraps the five CIE bucket averages.
type CieTrendResponse struct {
	Averages analytics.CieAverages `json:"averages"`
}

// FacultyAnalyticsResponse is the faculty dashboard payload.
type FacultyAnalyticsResponse struct {
	analytics.ClassAnalytics
	LowPerformersList []analytics.MarkRecord `json:"lowPerformersList"`
}

// DepartmentOverview pairs a department with its summary.
type DepartmentOverview struct {
	Department string `json:"department"`
	analytics.DepartmentSummary
}

// PrincipalDashboardResponse is the institution-wide dashboard payload.
type PrincipalDashboardResponse struct {
	TotalStudents    int                    `json:"totalStudents"`
	TotalFaculty     int                    `json:"totalFaculty"`
	TotalDepartments int                    `json:"totalDepartments"`
	Departments      []DepartmentOverview   `json:"departments"`
	LowPerformers    []analytics.MarkRecord `json:"lowPerformers"`
}

// SubjectAverage is one student's average in one subject.
type SubjectAverage struct {
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	SubjectCode string  `json:"subjectCode,omitempty"`
	Average     float64 `json:"average"`
}

// StudentDashboardResponse is the student home page payload.
type StudentDashboardResponse struct {
	Student         *models.Student        `json:"student"`
	Marks           []analytics.MarkRecord `json:"marks"`
	SubjectAverages []SubjectAverage       `json:"subjectAverages"`
	Trend           analytics.CieAverages  `json:"trend"`
}
