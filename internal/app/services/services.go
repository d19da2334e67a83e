package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/auth"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID     int64
	Username   string
	Role       models.RoleType
	Department string
}

// Is reports whether the actor holds any of roles.
func (a Actor) Is(roles ...models.RoleType) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Publisher pushes live events to connected users.
type Publisher interface {
	Publish(ctx context.Context, event *websocket.Event) error
}

// Limits carries the configurable list caps used by the services.
type Limits struct {
	PrincipalLowPerformers int
	FacultyLowPerformers   int
	LowMarkBound           float64
	NotificationList       int
}

// Services bundles every service for the router.
type Services struct {
	Auth          AuthService
	Analytics     AnalyticsService
	Marks         MarkService
	Announcements AnnouncementService
	Notifications NotificationService
	Attendance    AttendanceService
	Directory     DirectoryService
}

// NewServices wires services on top of the repositories.
func NewServices(repos *repositories.Repositories, jwt *auth.JWTService, publisher Publisher, limits Limits, logger zerolog.Logger) *Services {
	notifications := NewNotificationService(repos.Notifications, repos.Users, publisher, limits.NotificationList, logger)
	return &Services{
		Auth:          NewAuthService(repos.Users, repos.Tokens, jwt, logger),
		Analytics:     NewAnalyticsService(repos.Marks, repos.Subjects, repos.Students, repos.Users, limits, logger),
		Marks:         NewMarkService(repos.Marks, repos.Subjects, repos.Students, repos.Users, notifications, logger),
		Announcements: NewAnnouncementService(repos.Announcements, repos.Subjects, repos.Students, notifications, logger),
		Notifications: notifications,
		Attendance:    NewAttendanceService(repos.Attendance, repos.Subjects, repos.Students, logger),
		Directory:     NewDirectoryService(repos.Subjects, repos.Students, repos.Users, logger),
	}
}

// resolveStudent finds the student record of a STUDENT actor, by linked account first and
// register number (the username) second.
func resolveStudent(ctx context.Context, students repositories.IStudentRepository, actor Actor) (*models.Student, error) {
	if !actor.Is(models.RoleStudent) {
		return nil, apperrors.NewForbiddenError("only students have a student record")
	}
	s, err := students.GetByUserID(ctx, actor.UserID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, err
	}
	s, err = students.GetByRegNo(ctx, actor.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.NotFoundf(apperrors.ErrStudentNotFound, "no student record for %s", actor.Username)
		}
		return nil, err
	}
	return s, nil
}

// authorizeSubject loads a subject and checks the actor may act on it: faculty must teach it,
// HODs must head its department, principals may act on any subject.
func authorizeSubject(ctx context.Context, subjects repositories.ISubjectRepository, actor Actor, subjectID int64) (*models.Subject, error) {
	subject, err := subjects.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSubjectNotFound) {
			return nil, apperrors.NotFoundf(apperrors.ErrSubjectNotFound, "subject %d not found", subjectID)
		}
		return nil, err
	}

	switch actor.Role {
	case models.RolePrincipal:
		return subject, nil
	case models.RoleHOD:
		if subject.Department == actor.Department || subject.TaughtBy(actor.UserID) {
			return subject, nil
		}
	case models.RoleFaculty:
		if subject.TaughtBy(actor.UserID) {
			return subject, nil
		}
	}
	return nil, apperrors.NewForbiddenError(fmt.Sprintf("not allowed to manage subject %s", subject.Code))
}
