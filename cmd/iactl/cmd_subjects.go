package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yigit/iatracker/internal/app/repositories"
)

var (
	dumpDepartment string
	dumpSemester   int
)

// subjectDump is the YAML shape written by dump-subjects.
type subjectDump struct {
	ID         int64  `yaml:"id"`
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
	Semester   int    `yaml:"semester"`
	Instructor string `yaml:"instructor,omitempty"`
}

var dumpSubjectsCmd = &cobra.Command{
	Use:   "dump-subjects",
	Short: "Print subjects and their instructors as YAML",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		subjects, err := e.deps.Services.Directory.Subjects(ctx, repositories.SubjectFilter{
			Department: dumpDepartment,
			Semester:   dumpSemester,
		})
		if err != nil {
			return err
		}

		out := make([]subjectDump, 0, len(subjects))
		for _, s := range subjects {
			out = append(out, subjectDump{
				ID:         s.ID,
				Code:       s.Code,
				Name:       s.Name,
				Department: s.Department,
				Semester:   s.Semester,
				Instructor: s.InstructorName,
			})
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]subjectDump{"subjects": out}); err != nil {
			return err
		}
		return enc.Close()
	}),
}

var reassignInstructorCmd = &cobra.Command{
	Use:   "reassign-instructor <subjectCode> <username>",
	Short: "Make a faculty member or HOD the instructor of a subject",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		subject, err := e.deps.Services.Directory.ReassignInstructor(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now taught by %s\n", subject.Code, subject.Name, subject.InstructorName)
		return nil
	}),
}

func init() {
	dumpSubjectsCmd.Flags().StringVarP(&dumpDepartment, "department", "d", "", "Only dump subjects of this department")
	dumpSubjectsCmd.Flags().IntVar(&dumpSemester, "semester", 0, "Only dump subjects of this semester")
}
