package analytics

import "math"

// SubjectPerformance is one row of the department subject-wise performance table.
type SubjectPerformance struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Averages CieAverages `json:"averages"`
	Overall  float64     `json:"overall"`
	PassRate int         `json:"passRate"`
}

// ComputeSubjectPerformance buckets each subject's marks by CIE type and derives an overall
// average and pass rate. Rows follow the order of subjects and a repeated ID yields one row;
// marks for subjects not in the list are ignored.
//
// A bucket average of zero is read as "no data" and left out of Overall, which also drops a
// genuine all-zero assessment. PassRate assumes a ScaleMax point scale for every subject.
func ComputeSubjectPerformance(subjects []SubjectRef, marks []MarkRecord) []SubjectPerformance {
	buckets := make(map[int64]bucketSet, len(subjects))
	for _, s := range subjects {
		buckets[s.ID] = make(bucketSet)
	}
	for _, m := range marks {
		b, ok := buckets[m.SubjectID]
		if !ok {
			continue
		}
		if t, ok := NormalizeCieType(m.CIEType); ok {
			b.add(t, m)
		}
	}

	result := make([]SubjectPerformance, 0, len(buckets))
	emitted := make(map[int64]bool, len(buckets))
	for _, s := range subjects {
		if emitted[s.ID] {
			continue
		}
		emitted[s.ID] = true
		avgs := buckets[s.ID].averages()

		var scored []float64
		for _, t := range CieTypes {
			if avgs[t] > 0 {
				scored = append(scored, avgs[t])
			}
		}
		overall := round1(mean(scored))

		result = append(result, SubjectPerformance{
			ID:       s.ID,
			Name:     s.Name,
			Averages: avgs,
			Overall:  overall,
			PassRate: passRate(overall),
		})
	}
	return result
}

func passRate(overall float64) int {
	if overall <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(overall/ScaleMax*100)))
}
