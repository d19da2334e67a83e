package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

func TestDirectory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	all, err := f.services.Directory.Subjects(ctx, repositories.SubjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cs, err := f.services.Directory.ByDepartment(ctx, "CS")
	require.NoError(t, err)
	assert.Len(t, cs, 2)

	mine, err := f.services.Directory.MySubjects(ctx, actorOf(f.faculty))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "CS501", mine[0].Code)

	_, err = f.services.Directory.Subject(ctx, 123456)
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)

	staff, err := f.services.Directory.FacultyList(ctx, "")
	require.NoError(t, err)
	assert.Len(t, staff, 3)
}

func TestSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	empty, err := f.services.Directory.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty.Students)
	assert.Empty(t, empty.Faculty)
	assert.NotNil(t, empty.Students)

	byReg, err := f.services.Directory.Search(ctx, "1cs00")
	require.NoError(t, err)
	assert.Len(t, byReg.Students, 3)
	assert.Empty(t, byReg.Faculty)

	byName, err := f.services.Directory.Search(ctx, "rao")
	require.NoError(t, err)
	require.Len(t, byName.Faculty, 1)
	assert.Equal(t, "anita", byName.Faculty[0].Username)
}

func TestReassignInstructor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	subject, err := f.services.Directory.ReassignInstructor(ctx, " CS502 ", "anita")
	require.NoError(t, err)
	assert.Equal(t, f.faculty.ID, *subject.InstructorID)
	assert.Equal(t, "Anita Rao", subject.InstructorName)

	mine, err := f.services.Directory.MySubjects(ctx, actorOf(f.faculty))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.services.Directory.ReassignInstructor(ctx, "CS502", "1CS001")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.services.Directory.ReassignInstructor(ctx, "XX999", "anita")
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)

	_, err = f.services.Directory.ReassignInstructor(ctx, "CS502", "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
