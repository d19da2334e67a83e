// Package seed creates the default accounts, subjects and students of a fresh installation.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/auth"
)

// DefaultPassword is given to every seeded account unless another is supplied.
const DefaultPassword = "password123"

// Result counts what a run created. Existing rows are never modified.
type Result struct {
	Users    int
	Subjects int
	Students int
}

type subjectSeed struct {
	Code, Name, Department string
	Semester               int
	Instructor             string
}

var defaultUsers = []models.User{
	{Username: "principal", FullName: "Principal", Email: "principal@college.edu", Role: models.RolePrincipal, Designation: "Principal"},
	{Username: "hod_cs", FullName: "HOD CS", Email: "hod_cs@college.edu", Role: models.RoleHOD, Department: "CS", Designation: "Professor"},
	{Username: "faculty1", FullName: "Faculty1", Email: "faculty1@example.com", Role: models.RoleFaculty, Department: "CS", Designation: "Assistant Professor"},
	{Username: "faculty2", FullName: "Faculty2", Email: "faculty2@example.com", Role: models.RoleFaculty, Department: "CS", Designation: "Assistant Professor"},
	{Username: "faculty3", FullName: "Faculty3", Email: "faculty3@example.com", Role: models.RoleFaculty, Department: "CS", Designation: "Assistant Professor"},
	{Username: "faculty4", FullName: "Faculty4", Email: "faculty4@example.com", Role: models.RoleFaculty, Department: "CS", Designation: "Assistant Professor"},
}

var defaultSubjects = []subjectSeed{
	{Code: "CS501", Name: "Database Management Systems", Department: "CS", Semester: 5, Instructor: "faculty1"},
	{Code: "CS502", Name: "Computer Networks", Department: "CS", Semester: 5, Instructor: "faculty2"},
	{Code: "CS503", Name: "Software Engineering", Department: "CS", Semester: 5, Instructor: "faculty3"},
	{Code: "CS504", Name: "Theory of Computation", Department: "CS", Semester: 5, Instructor: "faculty4"},
}

const defaultStudents = 10

// Run inserts the default data. It is idempotent: rows that already exist are skipped and
// a failure on one row does not stop the others; all failures are returned joined.
func Run(ctx context.Context, repos *repositories.Repositories, password string, lgr zerolog.Logger) (Result, error) {
	var (
		res      Result
		finalErr error
	)
	if password == "" {
		password = DefaultPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return res, fmt.Errorf("failed to hash seed password: %w", err)
	}

	lgr.Info().Msg("Checking/Creating default data...")

	for _, u := range defaultUsers {
		u.Password = hash
		err := repos.Users.Create(ctx, &u)
		switch {
		case err == nil:
			res.Users++
			lgr.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("Created user")
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			lgr.Debug().Str("username", u.Username).Msg("User already exists")
		default:
			lgr.Error().Err(err).Str("username", u.Username).Msg("Error creating user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, s := range defaultSubjects {
		subject := &models.Subject{Code: s.Code, Name: s.Name, Department: s.Department, Semester: s.Semester}
		if instructor, err := repos.Users.GetByUsername(ctx, s.Instructor); err == nil {
			subject.InstructorID = &instructor.ID
		} else if !errors.Is(err, apperrors.ErrUserNotFound) {
			finalErr = errors.Join(finalErr, err)
		}

		created, err := repos.Subjects.Create(ctx, subject)
		if err != nil {
			lgr.Error().Err(err).Str("code", s.Code).Msg("Error creating subject")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			res.Subjects++
		}
	}

	for i := 1; i <= defaultStudents; i++ {
		regNo := fmt.Sprintf("1CS%03d", i)
		student := &models.Student{
			RegNo:      regNo,
			Name:       fmt.Sprintf("Student %d", i),
			Department: "CS",
			Semester:   5,
			Section:    "A",
		}

		user := &models.User{Username: regNo, Password: hash, FullName: student.Name, Role: models.RoleStudent, Department: "CS", Section: "A"}
		err := repos.Users.Create(ctx, user)
		switch {
		case err == nil:
			res.Users++
			student.UserID = &user.ID
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			if existing, err := repos.Users.GetByUsername(ctx, regNo); err == nil {
				student.UserID = &existing.ID
			}
		default:
			finalErr = errors.Join(finalErr, err)
		}

		created, err := repos.Students.Create(ctx, student)
		if err != nil {
			lgr.Error().Err(err).Str("regNo", regNo).Msg("Error creating student")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			res.Students++
		}
	}

	lgr.Info().
		Int("users", res.Users).
		Int("subjects", res.Subjects).
		Int("students", res.Students).
		Msg("Default data check complete")
	return res, finalErr
}
