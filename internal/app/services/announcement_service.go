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
	"github.com/yigit/iatracker/internal/pkg/helpers"
)

// AnnouncementService schedules CIEs and tells students about them.
type AnnouncementService interface {
	Save(ctx context.Context, actor Actor, req dto.AnnouncementRequest) (*models.Announcement, error)
	ForStudent(ctx context.Context, actor Actor) ([]*models.Announcement, error)
	ForFaculty(ctx context.Context, actor Actor) ([]*models.Announcement, error)
	ForHOD(ctx context.Context, actor Actor) ([]*models.Announcement, error)
	Details(ctx context.Context, actor Actor, subjectID int64, cieNumber int) (*models.Announcement, error)
}

type announcementService struct {
	announcements repositories.IAnnouncementRepository
	subjects      repositories.ISubjectRepository
	students      repositories.IStudentRepository
	notifications NotificationService
	logger        zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(announcements repositories.IAnnouncementRepository, subjects repositories.ISubjectRepository, students repositories.IStudentRepository, notifications NotificationService, logger zerolog.Logger) AnnouncementService {
	return &announcementService{
		announcements: announcements,
		subjects:      subjects,
		students:      students,
		notifications: notifications,
		logger:        logger,
	}
}

// Save creates or replaces the announcement of (subject, CIE number) and notifies the
// students of the subject's department and semester.
func (s *announcementService) Save(ctx context.Context, actor Actor, req dto.AnnouncementRequest) (*models.Announcement, error) {
	if req.SubjectID <= 0 {
		return nil, apperrors.NewBadRequestError("subjectId is required")
	}
	if req.CIENumber < 1 || req.CIENumber > 5 {
		return nil, apperrors.NewBadRequestError("cieNumber must be between 1 and 5")
	}
	date, err := helpers.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	subject, err := authorizeSubject(ctx, s.subjects, actor, req.SubjectID)
	if err != nil {
		return nil, err
	}

	facultyID := actor.UserID
	a := &models.Announcement{
		SubjectID:        subject.ID,
		CIENumber:        req.CIENumber,
		ScheduledDate:    date,
		StartTime:        strings.TrimSpace(req.StartTime),
		DurationMinutes:  req.DurationMinutes,
		ExamRoom:         req.ExamRoom,
		Instructions:     req.Instructions,
		SyllabusCoverage: req.SyllabusCoverage,
		Status:           models.AnnouncementStatus(strings.ToUpper(req.Status)),
		FacultyID:        &facultyID,
		SubjectName:      subject.Name,
		SubjectCode:      subject.Code,
		Department:       subject.Department,
		Semester:         subject.Semester,
	}
	if err := s.announcements.Upsert(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("subjectID", subject.ID).
		Int("cieNumber", a.CIENumber).
		Str("status", string(a.Status)).
		Msg("Announcement saved")

	s.notifyStudents(ctx, subject, a)
	return a, nil
}

func (s *announcementService) notifyStudents(ctx context.Context, subject *models.Subject, a *models.Announcement) {
	ids, err := s.students.UserIDs(ctx, subject.Department, subject.Semester)
	if err != nil {
		s.logger.Warn().Err(err).Int64("subjectID", subject.ID).Msg("Could not load announcement recipients")
		return
	}

	var msg string
	kind := models.NotificationInfo
	switch a.Status {
	case models.AnnouncementCancelled:
		msg = fmt.Sprintf("CIE %d of %s (%s) has been cancelled", a.CIENumber, subject.Name, subject.Code)
		kind = models.NotificationWarning
	case models.AnnouncementCompleted:
		msg = fmt.Sprintf("CIE %d of %s (%s) is completed", a.CIENumber, subject.Name, subject.Code)
	default:
		msg = fmt.Sprintf("CIE %d of %s (%s) is scheduled on %s", a.CIENumber, subject.Name, subject.Code,
			a.ScheduledDate.Format(helpers.DateLayout))
		if a.StartTime != "" {
			msg += " at " + a.StartTime
		}
	}

	if _, err := s.notifications.Notify(ctx, ids, msg, kind, "ANNOUNCEMENT", "/student/announcements"); err != nil {
		s.logger.Warn().Err(err).Int64("subjectID", subject.ID).Msg("Failed to notify students of announcement")
	}
}

// ForStudent lists the scheduled CIEs of the student's department and semester, earliest first.
func (s *announcementService) ForStudent(ctx context.Context, actor Actor) ([]*models.Announcement, error) {
	student, err := resolveStudent(ctx, s.students, actor)
	if err != nil {
		return nil, err
	}
	return s.announcements.List(ctx, repositories.AnnouncementFilter{
		Department: student.Department,
		Semester:   student.Semester,
		Status:     models.AnnouncementScheduled,
	})
}

func (s *announcementService) ForFaculty(ctx context.Context, actor Actor) ([]*models.Announcement, error) {
	return s.announcements.List(ctx, repositories.AnnouncementFilter{FacultyID: actor.UserID})
}

func (s *announcementService) ForHOD(ctx context.Context, actor Actor) ([]*models.Announcement, error) {
	if actor.Department == "" {
		return []*models.Announcement{}, nil
	}
	return s.announcements.List(ctx, repositories.AnnouncementFilter{Department: actor.Department})
}

func (s *announcementService) Details(ctx context.Context, actor Actor, subjectID int64, cieNumber int) (*models.Announcement, error) {
	if subjectID <= 0 || cieNumber <= 0 {
		return nil, apperrors.NewBadRequestError("subjectId and cieNumber are required")
	}
	if _, err := authorizeSubject(ctx, s.subjects, actor, subjectID); err != nil {
		return nil, err
	}
	a, err := s.announcements.Get(ctx, subjectID, cieNumber)
	if err != nil {
		return nil, err
	}
	return a, nil
}
