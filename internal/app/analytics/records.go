// Package analytics turns flat CIE mark records into the grouped statistics shown on the
// student, faculty, HOD and principal dashboards.
//
// Every function in this package is pure: it takes plain values, never touches a database
// connection and never returns an error. Records with missing marks are excluded from the
// groups they would otherwise belong to, so an empty input always yields a zero-valued result
// rather than a failure. Callers that need to tell "no data" apart from "scored zero" must do
// so from the shape of their own input.
package analytics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

const (
	// PassThreshold is the per-student average (out of ScaleMax) at or above which a student passes.
	PassThreshold = 20.0
	// RiskThreshold is the per-student average below which a student is counted as at risk.
	RiskThreshold = 18.0
	// ScaleMax is the fixed maximum score used when turning an average into a pass rate.
	ScaleMax = 50.0
	// DefaultMaxMarks is assumed for records whose MaxMarks is unset.
	DefaultMaxMarks = 50.0
)

// MarkStatus is the approval state of a mark record.
type MarkStatus string

const (
	StatusPending   MarkStatus = "PENDING"
	StatusSubmitted MarkStatus = "SUBMITTED"
	StatusApproved  MarkStatus = "APPROVED"
)

// CieType is one of the five CIE buckets.
type CieType string

const (
	CIE1 CieType = "CIE1"
	CIE2 CieType = "CIE2"
	CIE3 CieType = "CIE3"
	CIE4 CieType = "CIE4"
	CIE5 CieType = "CIE5"
)

// CieTypes lists the buckets in display order.
var CieTypes = []CieType{CIE1, CIE2, CIE3, CIE4, CIE5}

// MarkRecord is one CIE entry for a student in a subject.
type MarkRecord struct {
	ID        int64      `json:"id,omitempty"`
	StudentID int64      `json:"studentId"`
	SubjectID int64      `json:"subjectId"`
	CIEType   string     `json:"cieType"`
	Marks     *float64   `json:"marks"`
	MaxMarks  float64    `json:"maxMarks"`
	Status    MarkStatus `json:"status"`

	// Display fields, filled in by the data access layer when available.
	StudentName string `json:"studentName,omitempty"`
	RegNo       string `json:"regNo,omitempty"`
	Section     string `json:"section,omitempty"`
	SubjectName string `json:"subjectName,omitempty"`
	SubjectCode string `json:"subjectCode,omitempty"`
}

// HasMarks reports whether the record has been evaluated.
func (r MarkRecord) HasMarks() bool {
	return r.Marks != nil
}

// EffectiveMaxMarks returns MaxMarks, or DefaultMaxMarks when it is unset.
func (r MarkRecord) EffectiveMaxMarks() float64 {
	if r.MaxMarks <= 0 {
		return DefaultMaxMarks
	}
	return r.MaxMarks
}

// SubjectRef is the subject information the engine needs.
type SubjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// CieAverages maps each of the five CIE buckets to its average. Values built by this package
// always carry all five keys.
type CieAverages map[CieType]float64

func newCieAverages() CieAverages {
	avgs := make(CieAverages, len(CieTypes))
	for _, t := range CieTypes {
		avgs[t] = 0
	}
	return avgs
}

// NormalizeCieType maps a free-text CIE label onto one of the five buckets.
//
// An exact (case-insensitive) CIE1..CIE5 label wins. Otherwise the label is scanned for the
// digits 1 to 5, in that order, and the first digit found picks the bucket, so "cie-2-resit"
// lands in CIE2. Upstream labelling is inconsistent and this leniency is intentional. Labels
// without any of those digits are reported as not matched.
func NormalizeCieType(label string) (CieType, bool) {
	if t, ok := exactCieType(label); ok {
		return t, true
	}
	upper := strings.ToUpper(strings.TrimSpace(label))
	for i, t := range CieTypes {
		if strings.ContainsRune(upper, rune('1'+i)) {
			return t, true
		}
	}
	return "", false
}

func exactCieType(label string) (CieType, bool) {
	upper := CieType(strings.ToUpper(strings.TrimSpace(label)))
	for _, t := range CieTypes {
		if upper == t {
			return t, true
		}
	}
	return "", false
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// mean averages values after sorting them, so the result does not depend on input order.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Mean(sorted, nil)
}
