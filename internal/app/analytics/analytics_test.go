package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func rec(student, subject int64, cie string, marks *float64) MarkRecord {
	return MarkRecord{StudentID: student, SubjectID: subject, CIEType: cie, Marks: marks, MaxMarks: 50, Status: StatusPending}
}

func TestComputeStudentAveragesSkipsUnevaluated(t *testing.T) {
	avgs := ComputeStudentAverages([]MarkRecord{rec(1, 10, "CIE1", nil)})
	assert.Empty(t, avgs)

	avgs = ComputeStudentAverages([]MarkRecord{
		rec(1, 10, "CIE1", f(20)),
		rec(1, 10, "CIE2", nil),
		rec(1, 11, "CIE1", f(30)),
		rec(2, 10, "CIE1", f(0)),
	})
	assert.Equal(t, map[int64]float64{1: 25, 2: 0}, avgs)
}

func TestComputeDepartmentSummary(t *testing.T) {
	assert.Equal(t, DepartmentSummary{}, ComputeDepartmentSummary(map[int64]float64{}))
	assert.Equal(t, DepartmentSummary{}, ComputeDepartmentSummary(nil))

	// Students A, B and C of CS average 45, 10 and 17.
	summary := ComputeDepartmentSummary(map[int64]float64{1: 45, 2: 10, 3: 17})
	assert.Equal(t, DepartmentSummary{
		Average:        24.0,
		PassPercentage: 33.3,
		AtRiskCount:    2,
		TotalStudents:  3,
	}, summary)
}

func TestDepartmentSummaryThresholds(t *testing.T) {
	tests := []struct {
		name       string
		avg        float64
		wantPass   float64
		wantAtRisk int
	}{
		{"exactly passing", 20, 100, 0},
		{"between risk and pass", 19, 0, 0},
		{"exactly at risk bound", 18, 0, 0},
		{"below risk bound", 17.9, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeDepartmentSummary(map[int64]float64{1: tt.avg})
			assert.Equal(t, tt.wantPass, s.PassPercentage)
			assert.Equal(t, tt.wantAtRisk, s.AtRiskCount)
		})
	}
}

func TestNormalizeCieType(t *testing.T) {
	tests := []struct {
		label  string
		want   CieType
		wantOK bool
	}{
		{"CIE1", CIE1, true},
		{" cie3 ", CIE3, true},
		{"cie-2-resit", CIE2, true},
		{"Internal 5", CIE5, true},
		{"CIE 4 (makeup)", CIE4, true},
		{"resit 2 of 1", CIE1, true},
		{"final", "", false},
		{"CIE9", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := NormalizeCieType(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCieTrend(t *testing.T) {
	empty := ComputeCieTrend(nil)
	require.Len(t, empty, 5)
	for _, typ := range CieTypes {
		assert.Equal(t, 0.0, empty[typ])
	}

	trend := ComputeCieTrend([]MarkRecord{
		rec(1, 1, "CIE1", f(10)),
		rec(2, 1, "cie1", f(15)),
		rec(3, 1, "cie-2-resit", f(33.33)),
		rec(4, 1, "final", f(50)),
		rec(5, 1, "CIE3", nil),
	})
	assert.Len(t, trend, 5)
	assert.Equal(t, 12.5, trend[CIE1])
	assert.Equal(t, 33.3, trend[CIE2])
	assert.Equal(t, 0.0, trend[CIE3])
}

func TestComputeSubjectTrendExact(t *testing.T) {
	trend := ComputeSubjectTrendExact([]MarkRecord{
		rec(1, 1, "CIE2", f(20)),
		rec(2, 1, "cie-2-resit", f(50)),
	})
	assert.Len(t, trend, 5)
	assert.Equal(t, 20.0, trend[CIE2])
}

func TestComputeSubjectPerformance(t *testing.T) {
	subjects := []SubjectRef{{ID: 2, Name: "Networks"}, {ID: 1, Name: "DBMS"}, {ID: 3, Name: "Compilers"}}
	marks := []MarkRecord{
		rec(1, 1, "CIE1", f(40)),
		rec(1, 2, "CIE1", f(30)),
		rec(2, 2, "CIE2", f(45)),
		rec(1, 99, "CIE1", f(5)),
		rec(2, 2, "CIE3", f(0)),
	}

	rows := ComputeSubjectPerformance(subjects, marks)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{rows[0].ID, rows[1].ID, rows[2].ID}, "keeps subject order")

	// Only non-zero buckets feed overall: {40, 0, 0, 0, 0} gives 40, not 8.
	assert.Equal(t, 40.0, rows[1].Overall)
	assert.Equal(t, 80, rows[1].PassRate)

	assert.Equal(t, 37.5, rows[0].Overall)
	assert.Equal(t, 75, rows[0].PassRate)
	assert.Equal(t, 0.0, rows[0].Averages[CIE3])

	assert.Equal(t, 0.0, rows[2].Overall)
	assert.Equal(t, 0, rows[2].PassRate)
	assert.Len(t, rows[2].Averages, 5)
}

func TestSubjectPerformanceRepeatedID(t *testing.T) {
	subjects := []SubjectRef{{ID: 1, Name: "DBMS"}, {ID: 2, Name: "Networks"}, {ID: 1, Name: "DBMS"}}
	rows := ComputeSubjectPerformance(subjects, []MarkRecord{rec(1, 1, "CIE1", f(40))})
	require.Len(t, rows, 2)
	assert.Equal(t, []int64{1, 2}, []int64{rows[0].ID, rows[1].ID})
	assert.Equal(t, 40.0, rows[0].Overall)
}

func TestPassRateIsCapped(t *testing.T) {
	rows := ComputeSubjectPerformance([]SubjectRef{{ID: 1}}, []MarkRecord{rec(1, 1, "CIE1", f(60))})
	assert.Equal(t, 100, rows[0].PassRate)
}

func TestExtractLowPerformers(t *testing.T) {
	marks := []MarkRecord{
		rec(1, 1, "CIE1", f(0)),
		rec(2, 1, "CIE1", f(19)),
		rec(3, 1, "CIE1", f(25)),
		rec(4, 1, "CIE1", f(15)),
		rec(5, 1, "CIE1", nil),
	}

	low := ExtractLowPerformers(marks, 20, true, 10)
	require.Len(t, low, 2)
	assert.Equal(t, 15.0, *low[0].Marks)
	assert.Equal(t, 19.0, *low[1].Marks)

	withZero := ExtractLowPerformers(marks, 20, false, 10)
	require.Len(t, withZero, 3)
	assert.Equal(t, 0.0, *withZero[0].Marks)

	capped := ExtractLowPerformers(marks, 20, false, 1)
	require.Len(t, capped, 1)
	assert.Equal(t, int64(1), capped[0].StudentID)

	assert.Len(t, ExtractLowPerformers(marks, 20, false, 0), 3)
	assert.Empty(t, ExtractLowPerformers(nil, 20, true, 10))
}

func TestComputeClassAnalytics(t *testing.T) {
	marks := []MarkRecord{
		rec(1, 1, "CIE1", f(45)),
		rec(1, 1, "CIE2", f(10)),
		rec(2, 1, "CIE1", f(30)),
		rec(3, 1, "CIE1", nil),
		{StudentID: 4, SubjectID: 2, CIEType: "CIE1", Marks: f(20), MaxMarks: 25},
	}
	// Percentages 90, 20, 60 and 80; the unevaluated record still counts as evaluated.
	got := ComputeClassAnalytics(marks, 6)
	assert.Equal(t, ClassAnalytics{
		TotalStudents: 6,
		Evaluated:     4,
		Pending:       2,
		AvgScore:      63,
		LowPerformers: 1,
		TopPerformers: 2,
	}, got)

	assert.Equal(t, ClassAnalytics{}, ComputeClassAnalytics(nil, 0))
	assert.Equal(t, 0, ComputeClassAnalytics(marks, 1).Pending)
}

// Aggregations must not depend on the order records arrive in, and must not mutate them.
func TestAggregationsAreOrderIndependentAndIdempotent(t *testing.T) {
	var marks []MarkRecord
	values := []float64{12.3, 45.1, 7.7, 33.3, 19.9, 0, 28.6, 41.2, 16.4, 22.2, 3.3, 49.9}
	for i, v := range values {
		marks = append(marks, rec(int64(i%4+1), int64(i%3+1), string(CieTypes[i%5]), f(v)))
	}
	snapshot := append([]MarkRecord(nil), marks...)
	subjects := []SubjectRef{{ID: 1}, {ID: 2}, {ID: 3}}

	wantSummary := ComputeDepartmentSummary(ComputeStudentAverages(marks))
	wantTrend := ComputeCieTrend(marks)
	wantPerf := ComputeSubjectPerformance(subjects, marks)
	wantLow := ExtractLowPerformers(marks, 20, true, 0)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]MarkRecord(nil), marks...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, wantSummary, ComputeDepartmentSummary(ComputeStudentAverages(shuffled)))
		assert.Equal(t, wantTrend, ComputeCieTrend(shuffled))
		assert.Equal(t, wantPerf, ComputeSubjectPerformance(subjects, shuffled))
		assert.Equal(t, wantLow, ExtractLowPerformers(shuffled, 20, true, 0))
	}
	assert.Equal(t, snapshot, marks)
}
