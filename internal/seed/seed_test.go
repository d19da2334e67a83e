package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/auth"
)

type memUsers struct {
	repositories.IUserRepository
	byName map[string]*models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if _, ok := m.byName[u.Username]; ok {
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "exists")
	}
	u.ID = int64(len(m.byName) + 1)
	cp := *u
	m.byName[u.Username] = &cp
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.byName[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type memSubjects struct {
	repositories.ISubjectRepository
	byCode map[string]*models.Subject
}

func (m *memSubjects) Create(_ context.Context, s *models.Subject) (bool, error) {
	if _, ok := m.byCode[s.Code]; ok {
		return false, nil
	}
	m.byCode[s.Code] = s
	return true, nil
}

type memStudents struct {
	repositories.IStudentRepository
	byReg map[string]*models.Student
}

func (m *memStudents) Create(_ context.Context, s *models.Student) (bool, error) {
	if _, ok := m.byReg[s.RegNo]; ok {
		return false, nil
	}
	m.byReg[s.RegNo] = s
	return true, nil
}

func TestRunIsIdempotent(t *testing.T) {
	users := &memUsers{byName: map[string]*models.User{}}
	subjects := &memSubjects{byCode: map[string]*models.Subject{}}
	students := &memStudents{byReg: map[string]*models.Student{}}
	repos := &repositories.Repositories{Users: users, Subjects: subjects, Students: students}
	ctx := context.Background()

	first, err := Run(ctx, repos, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: len(defaultUsers) + defaultStudents, Subjects: len(defaultSubjects), Students: defaultStudents}, first)

	second, err := Run(ctx, repos, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	hod := users.byName["hod_cs"]
	require.NotNil(t, hod)
	assert.Equal(t, models.RoleHOD, hod.Role)
	assert.True(t, auth.CheckPassword(hod.Password, DefaultPassword))

	dbms := subjects.byCode["CS501"]
	require.NotNil(t, dbms.InstructorID)
	assert.Equal(t, users.byName["faculty1"].ID, *dbms.InstructorID)

	st := students.byReg["1CS007"]
	require.NotNil(t, st)
	require.NotNil(t, st.UserID)
	assert.Equal(t, users.byName["1CS007"].ID, *st.UserID)
}
