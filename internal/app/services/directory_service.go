package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"golang.org/x/sync/errgroup"
)

// searchLimit caps each list of a directory search.
const searchLimit = 5

var staffRoles = []models.RoleType{models.RoleFaculty, models.RoleHOD}

// DirectoryService answers subject, student and staff lookups.
type DirectoryService interface {
	Subjects(ctx context.Context, filter repositories.SubjectFilter) ([]*models.Subject, error)
	Subject(ctx context.Context, id int64) (*models.Subject, error)
	ByDepartment(ctx context.Context, department string) ([]*models.Subject, error)
	MySubjects(ctx context.Context, actor Actor) ([]*models.Subject, error)
	FacultyList(ctx context.Context, department string) ([]dto.UserResponse, error)
	Search(ctx context.Context, query string) (*dto.SearchResponse, error)
	// ReassignInstructor hands a subject, by code, to a faculty member or HOD.
	ReassignInstructor(ctx context.Context, subjectCode, username string) (*models.Subject, error)
}

type directoryService struct {
	subjects repositories.ISubjectRepository
	students repositories.IStudentRepository
	users    repositories.IUserRepository
	logger   zerolog.Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(subjects repositories.ISubjectRepository, students repositories.IStudentRepository, users repositories.IUserRepository, logger zerolog.Logger) DirectoryService {
	return &directoryService{subjects: subjects, students: students, users: users, logger: logger}
}

func (s *directoryService) Subjects(ctx context.Context, filter repositories.SubjectFilter) ([]*models.Subject, error) {
	return s.subjects.List(ctx, filter)
}

func (s *directoryService) Subject(ctx context.Context, id int64) (*models.Subject, error) {
	if id <= 0 {
		return nil, apperrors.NewBadRequestError("invalid subject id")
	}
	return s.subjects.GetByID(ctx, id)
}

func (s *directoryService) ByDepartment(ctx context.Context, department string) ([]*models.Subject, error) {
	return s.subjects.List(ctx, repositories.SubjectFilter{Department: strings.TrimSpace(department)})
}

func (s *directoryService) MySubjects(ctx context.Context, actor Actor) ([]*models.Subject, error) {
	return s.subjects.List(ctx, repositories.SubjectFilter{InstructorID: actor.UserID})
}

func (s *directoryService) FacultyList(ctx context.Context, department string) ([]dto.UserResponse, error) {
	users, err := s.users.ListByRoles(ctx, staffRoles, strings.TrimSpace(department))
	if err != nil {
		return nil, err
	}
	return toUserResponses(users), nil
}

// Search matches students by name or register number and staff by name or username.
// An empty query returns empty lists.
func (s *directoryService) Search(ctx context.Context, query string) (*dto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	resp := &dto.SearchResponse{Students: []*models.Student{}, Faculty: []dto.UserResponse{}}
	if query == "" {
		return resp, nil
	}

	var staff []*models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := s.students.Search(gctx, query, searchLimit)
		if err != nil {
			return err
		}
		resp.Students = students
		return nil
	})
	g.Go(func() error {
		var err error
		staff, err = s.users.Search(gctx, query, staffRoles, searchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	resp.Faculty = toUserResponses(staff)
	return resp, nil
}

func toUserResponses(users []*models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	return out
}

func (s *directoryService) ReassignInstructor(ctx context.Context, subjectCode, username string) (*models.Subject, error) {
	subject, err := s.subjects.GetByCode(ctx, strings.TrimSpace(subjectCode))
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleFaculty && user.Role != models.RoleHOD {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s is a %s, not teaching staff", user.Username, user.Role))
	}

	if err := s.subjects.AssignInstructor(ctx, subject.ID, user.ID); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("subject", subject.Code).
		Str("instructor", user.Username).
		Msg("Subject instructor reassigned")

	subject.InstructorID = &user.ID
	subject.InstructorName = user.FullName
	return subject, nil
}
