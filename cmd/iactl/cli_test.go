package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
)

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"migrate", "seed", "reset-password", "list-faculty", "dump-subjects", "reassign-instructor", "cleanup-tokens", "show-student"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotNil(t, cmd.RunE, name)
	}
}

func TestArgumentValidation(t *testing.T) {
	assert.Error(t, resetPasswordCmd.Args(resetPasswordCmd, []string{"only-user"}))
	assert.NoError(t, resetPasswordCmd.Args(resetPasswordCmd, []string{"user", "secret123"}))
	assert.Error(t, reassignInstructorCmd.Args(reassignInstructorCmd, []string{"CS501"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"extra"}))
	assert.Error(t, cleanupTokensCmd.Args(cleanupTokensCmd, []string{"now"}))

	assert.NoError(t, showStudentCmd.Args(showStudentCmd, []string{"1cs001"}))
	assert.Error(t, showStudentCmd.Args(showStudentCmd, []string{"not a regno"}))
	assert.Error(t, showStudentCmd.Args(showStudentCmd, []string{}))
}

type cleanerFunc func(ctx context.Context) (int64, error)

func (f cleanerFunc) CleanupExpired(ctx context.Context) (int64, error) { return f(ctx) }

func TestCleanupTokens(t *testing.T) {
	var out bytes.Buffer
	err := cleanupTokens(context.Background(), cleanerFunc(func(context.Context) (int64, error) { return 7, nil }), &out)
	require.NoError(t, err)
	assert.Equal(t, "removed 7 refresh tokens\n", out.String())

	boom := errors.New("connection reset")
	out.Reset()
	err = cleanupTokens(context.Background(), cleanerFunc(func(context.Context) (int64, error) { return 0, boom }), &out)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
}

func TestBuildStudentReport(t *testing.T) {
	mark := func(v float64) *float64 { return &v }
	student := &models.Student{ID: 1, RegNo: "1CS001", Name: "Asha", Department: "CS", Semester: 5}
	marks := []analytics.MarkRecord{
		{StudentID: 1, SubjectID: 2, SubjectCode: "CS502", CIEType: "CIE2", Marks: mark(40), MaxMarks: 50, Status: analytics.StatusApproved},
		{StudentID: 1, SubjectID: 1, SubjectCode: "CS501", CIEType: "CIE1", Marks: mark(30), MaxMarks: 50},
		{StudentID: 1, SubjectID: 1, SubjectCode: "CS501", CIEType: "CIE2", Marks: mark(35), MaxMarks: 50},
		{StudentID: 1, SubjectID: 2, SubjectCode: "CS502", CIEType: "CIE1"},
	}

	report := buildStudentReport(student, marks)
	assert.Equal(t, "1CS001", report.RegNo)
	require.Len(t, report.Marks, 4)
	assert.Equal(t, "CS501", report.Marks[0].Subject)
	assert.Equal(t, "CIE1", report.Marks[0].CIE)
	assert.Equal(t, "CS502", report.Marks[2].Subject)
	assert.Nil(t, report.Marks[2].Marks)
	assert.Equal(t, map[string]float64{"CS501": 32.5, "CS502": 40}, report.Averages)
}

func TestDumpFlags(t *testing.T) {
	f := dumpSubjectsCmd.Flags().Lookup("department")
	require.NotNil(t, f)
	assert.Equal(t, "d", f.Shorthand)
	assert.Equal(t, "", f.DefValue)
}
