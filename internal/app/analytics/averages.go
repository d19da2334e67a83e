package analytics

import "sort"

// DepartmentSummary is the rolled-up view of one department's per-student averages.
type DepartmentSummary struct {
	Average        float64 `json:"average"`
	PassPercentage float64 `json:"passPercentage"`
	AtRiskCount    int     `json:"atRiskCount"`
	TotalStudents  int     `json:"totalStudents"`
}

// ComputeStudentAverages groups marks by student and averages the evaluated ones.
// Students with no evaluated record are left out of the result.
func ComputeStudentAverages(marks []MarkRecord) map[int64]float64 {
	return groupMeans(marks, func(m MarkRecord) int64 { return m.StudentID })
}

// ComputeSubjectAverages is ComputeStudentAverages keyed by subject, rounded to one decimal.
// It is used for a single student's marks.
func ComputeSubjectAverages(marks []MarkRecord) map[int64]float64 {
	averages := groupMeans(marks, func(m MarkRecord) int64 { return m.SubjectID })
	for id, avg := range averages {
		averages[id] = round1(avg)
	}
	return averages
}

func groupMeans(marks []MarkRecord, key func(MarkRecord) int64) map[int64]float64 {
	grouped := make(map[int64][]float64)
	for _, m := range marks {
		if !m.HasMarks() {
			continue
		}
		k := key(m)
		grouped[k] = append(grouped[k], *m.Marks)
	}

	averages := make(map[int64]float64, len(grouped))
	for k, values := range grouped {
		averages[k] = mean(values)
	}
	return averages
}

// ComputeDepartmentSummary derives the department dashboard figures from per-student averages.
// An empty map yields an all-zero summary.
func ComputeDepartmentSummary(averages map[int64]float64) DepartmentSummary {
	total := len(averages)
	if total == 0 {
		return DepartmentSummary{}
	}

	ids := make([]int64, 0, total)
	for id := range averages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	values := make([]float64, 0, total)
	passed, atRisk := 0, 0
	for _, id := range ids {
		avg := averages[id]
		values = append(values, avg)
		if avg >= PassThreshold {
			passed++
		}
		if avg < RiskThreshold {
			atRisk++
		}
	}

	return DepartmentSummary{
		Average:        round1(mean(values)),
		PassPercentage: round1(float64(passed) / float64(total) * 100),
		AtRiskCount:    atRisk,
		TotalStudents:  total,
	}
}
