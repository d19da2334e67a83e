package analytics

import (
	"fmt"
	"math"
	"sort"
)

// ExtractLowPerformers returns evaluated records scoring below lowerBound, lowest first.
// With strictlyPositive set, zero marks (usually "not entered yet") are skipped as well.
// A limit of zero or less returns every match.
func ExtractLowPerformers(marks []MarkRecord, lowerBound float64, strictlyPositive bool, limit int) []MarkRecord {
	low := make([]MarkRecord, 0)
	for _, m := range marks {
		if !m.HasMarks() {
			continue
		}
		score := *m.Marks
		if score >= lowerBound {
			continue
		}
		if strictlyPositive && score <= 0 {
			continue
		}
		low = append(low, m)
	}

	sort.SliceStable(low, func(i, j int) bool {
		a, b := low[i], low[j]
		if *a.Marks != *b.Marks {
			return *a.Marks < *b.Marks
		}
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.CIEType < b.CIEType
	})

	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	return low
}

// ClassAnalytics is the faculty dashboard summary over the subjects a faculty member teaches.
type ClassAnalytics struct {
	TotalStudents int `json:"totalStudents"`
	Evaluated     int `json:"evaluated"`
	Pending       int `json:"pending"`
	AvgScore      int `json:"avgScore"`
	LowPerformers int `json:"lowPerformers"`
	TopPerformers int `json:"topPerformers"`
}

const (
	lowPercentage = 40.0
	topPercentage = 80.0
)

// ComputeClassAnalytics summarises marks for a faculty member's classes. totalStudents is the
// combined class size of the subjects; a student counts as evaluated once per subject in
// which any record exists.
func ComputeClassAnalytics(marks []MarkRecord, totalStudents int) ClassAnalytics {
	evaluated := make(map[string]struct{})
	var percentages []float64
	low, top := 0, 0

	for _, m := range marks {
		evaluated[fmt.Sprintf("%d-%d", m.StudentID, m.SubjectID)] = struct{}{}
		if !m.HasMarks() || m.MaxMarks <= 0 {
			continue
		}
		pct := *m.Marks / m.MaxMarks * 100
		percentages = append(percentages, pct)
		if pct < lowPercentage {
			low++
		}
		if pct >= topPercentage {
			top++
		}
	}

	pending := totalStudents - len(evaluated)
	if pending < 0 {
		pending = 0
	}

	return ClassAnalytics{
		TotalStudents: totalStudents,
		Evaluated:     len(evaluated),
		Pending:       pending,
		AvgScore:      int(math.Round(mean(percentages))),
		LowPerformers: low,
		TopPerformers: top,
	}
}
