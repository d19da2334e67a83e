package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/validation"
)

type markLine struct {
	Subject string   `yaml:"subject"`
	CIE     string   `yaml:"cie"`
	Marks   *float64 `yaml:"marks"`
	Max     float64  `yaml:"max"`
	Status  string   `yaml:"status"`
}

// studentReport is the YAML shape written by show-student.
type studentReport struct {
	RegNo      string             `yaml:"regNo"`
	Name       string             `yaml:"name"`
	Department string             `yaml:"department"`
	Semester   int                `yaml:"semester"`
	Section    string             `yaml:"section,omitempty"`
	Marks      []markLine         `yaml:"marks"`
	Averages   map[string]float64 `yaml:"averages,omitempty"`
}

func regNoArg(_ *cobra.Command, args []string) error {
	if !validation.IsRegNo(args[0]) {
		return fmt.Errorf("%q is not a register number", args[0])
	}
	return nil
}

var showStudentCmd = &cobra.Command{
	Use:   "show-student <regNo>",
	Short: "Print a student's CIE marks and subject averages as YAML",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), regNoArg),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		student, err := e.deps.Repos.Students.GetByRegNo(ctx, args[0])
		if err != nil {
			return err
		}
		marks, err := e.deps.Repos.Marks.List(ctx, repositories.MarkFilter{StudentID: student.ID})
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(buildStudentReport(student, marks)); err != nil {
			return err
		}
		return enc.Close()
	}),
}

func buildStudentReport(s *models.Student, marks []analytics.MarkRecord) studentReport {
	report := studentReport{
		RegNo:      s.RegNo,
		Name:       s.Name,
		Department: s.Department,
		Semester:   s.Semester,
		Section:    s.Section,
		Marks:      make([]markLine, 0, len(marks)),
	}

	codes := make(map[int64]string)
	for _, m := range marks {
		code := m.SubjectCode
		if code == "" {
			code = fmt.Sprintf("#%d", m.SubjectID)
		}
		codes[m.SubjectID] = code
		report.Marks = append(report.Marks, markLine{
			Subject: code,
			CIE:     m.CIEType,
			Marks:   m.Marks,
			Max:     m.EffectiveMaxMarks(),
			Status:  string(m.Status),
		})
	}
	sort.SliceStable(report.Marks, func(i, j int) bool {
		a, b := report.Marks[i], report.Marks[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.CIE < b.CIE
	})

	if avgs := analytics.ComputeSubjectAverages(marks); len(avgs) > 0 {
		report.Averages = make(map[string]float64, len(avgs))
		for id, avg := range avgs {
			report.Averages[codes[id]] = avg
		}
	}
	return report
}
