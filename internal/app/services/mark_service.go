package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

// MarkService drives CIE mark entry and the PENDING → SUBMITTED → APPROVED workflow.
type MarkService interface {
	ForSubject(ctx context.Context, actor Actor, subjectID int64) ([]analytics.MarkRecord, error)
	MyMarks(ctx context.Context, actor Actor) ([]analytics.MarkRecord, error)
	SaveBatch(ctx context.Context, actor Actor, req dto.BatchMarksRequest) (*dto.BatchMarksResult, error)
	Submit(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error)
	Pending(ctx context.Context, actor Actor, department string) ([]analytics.MarkRecord, error)
	Approve(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error)
	Unlock(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error)
}

type markService struct {
	marks         repositories.IMarkRepository
	subjects      repositories.ISubjectRepository
	students      repositories.IStudentRepository
	users         repositories.IUserRepository
	notifications NotificationService
	logger        zerolog.Logger
}

// NewMarkService creates a new MarkService
func NewMarkService(marks repositories.IMarkRepository, subjects repositories.ISubjectRepository, students repositories.IStudentRepository, users repositories.IUserRepository, notifications NotificationService, logger zerolog.Logger) MarkService {
	return &markService{
		marks:         marks,
		subjects:      subjects,
		students:      students,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *markService) ForSubject(ctx context.Context, actor Actor, subjectID int64) ([]analytics.MarkRecord, error) {
	if _, err := authorizeSubject(ctx, s.subjects, actor, subjectID); err != nil {
		return nil, err
	}
	return s.marks.List(ctx, repositories.MarkFilter{SubjectIDs: []int64{subjectID}})
}

func (s *markService) MyMarks(ctx context.Context, actor Actor) ([]analytics.MarkRecord, error) {
	student, err := resolveStudent(ctx, s.students, actor)
	if err != nil {
		return nil, err
	}
	return s.marks.List(ctx, repositories.MarkFilter{StudentID: student.ID})
}

// SaveBatch writes a faculty member's marks. Entries for unknown subjects or students are
// skipped; a subject taught by someone else rejects the whole batch. When nothing could be
// written because every target was approved, the counts come back with ErrMarksLocked.
func (s *markService) SaveBatch(ctx context.Context, actor Actor, req dto.BatchMarksRequest) (*dto.BatchMarksResult, error) {
	owned := make(map[int64]bool)
	entries := make([]repositories.MarkUpsert, 0, len(req.Entries))
	result := &dto.BatchMarksResult{}

	for _, e := range req.Entries {
		cie, ok := analytics.NormalizeCieType(e.CIEType)
		if !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid CIE type %q", e.CIEType))
		}

		allowed, checked := owned[e.SubjectID]
		if !checked {
			_, err := authorizeSubject(ctx, s.subjects, actor, e.SubjectID)
			switch {
			case err == nil:
				allowed = true
			case errors.Is(err, apperrors.ErrSubjectNotFound):
				allowed = false
			default:
				return nil, err
			}
			owned[e.SubjectID] = allowed
		}
		if !allowed {
			result.Skipped++
			continue
		}

		entries = append(entries, repositories.MarkUpsert{
			StudentID: e.StudentID,
			SubjectID: e.SubjectID,
			CIEType:   string(cie),
			Marks:     e.Marks,
			MaxMarks:  e.MaxMarks,
		})
	}

	out, err := s.marks.UpsertBatch(ctx, entries)
	if err != nil {
		return nil, err
	}
	result.Updated = out.Updated
	result.Skipped += out.Skipped
	result.Locked = out.Locked

	s.logger.Info().
		Int64("facultyID", actor.UserID).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("locked", result.Locked).
		Msg("Marks saved")

	if result.Updated == 0 && result.Locked > 0 {
		lockErr := apperrors.NewCustomError(apperrors.ErrMarksLocked, "approved marks cannot be changed").
			WithDetails(map[string]interface{}{"locked": result.Locked, "skipped": result.Skipped})
		return result, lockErr
	}
	return result, nil
}

func (s *markService) Submit(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error) {
	subject, result, err := s.transition(ctx, actor, req, []analytics.MarkStatus{analytics.StatusPending}, analytics.StatusSubmitted)
	if err != nil || result.Affected == 0 {
		return result, err
	}

	hods, err := s.users.ListByRoles(ctx, []models.RoleType{models.RoleHOD}, subject.Department)
	if err != nil {
		s.logger.Warn().Err(err).Str("department", subject.Department).Msg("Could not load HODs for submission notice")
		return result, nil
	}
	msg := fmt.Sprintf("%s marks for %s (%s) were submitted for approval", result.CIEType, subject.Name, subject.Code)
	s.notify(ctx, userIDs(hods), msg, "MARKS")
	return result, nil
}

// Pending lists submitted marks awaiting approval. HODs see their own department only.
func (s *markService) Pending(ctx context.Context, actor Actor, department string) ([]analytics.MarkRecord, error) {
	department = strings.TrimSpace(department)
	if actor.Is(models.RoleHOD) {
		if department != "" && department != actor.Department {
			return nil, apperrors.NewForbiddenError("HODs may only review their own department")
		}
		department = actor.Department
	}
	if department == "" {
		return nil, apperrors.NewBadRequestError("department is required")
	}
	return s.marks.List(ctx, repositories.MarkFilter{Department: department, Status: analytics.StatusSubmitted})
}

func (s *markService) Approve(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error) {
	subject, result, err := s.transition(ctx, actor, req, []analytics.MarkStatus{analytics.StatusSubmitted}, analytics.StatusApproved)
	if err != nil || result.Affected == 0 {
		return result, err
	}
	if subject.InstructorID != nil {
		msg := fmt.Sprintf("%s marks for %s (%s) were approved", result.CIEType, subject.Name, subject.Code)
		s.notify(ctx, []int64{*subject.InstructorID}, msg, "MARKS")
	}
	return result, nil
}

func (s *markService) Unlock(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error) {
	from := []analytics.MarkStatus{analytics.StatusApproved, analytics.StatusSubmitted}
	subject, result, err := s.transition(ctx, actor, req, from, analytics.StatusPending)
	if err != nil || result.Affected == 0 {
		return result, err
	}
	if subject.InstructorID != nil {
		msg := fmt.Sprintf("%s marks for %s (%s) were unlocked for editing", result.CIEType, subject.Name, subject.Code)
		s.notify(ctx, []int64{*subject.InstructorID}, msg, "MARKS")
	}
	return result, nil
}

func (s *markService) transition(ctx context.Context, actor Actor, req dto.MarkWorkflowRequest, from []analytics.MarkStatus, to analytics.MarkStatus) (*models.Subject, *dto.MarkWorkflowResult, error) {
	cie, ok := analytics.NormalizeCieType(req.CIEType)
	if !ok {
		return nil, nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid CIE type %q", req.CIEType))
	}
	subject, err := authorizeSubject(ctx, s.subjects, actor, req.SubjectID)
	if err != nil {
		return nil, nil, err
	}

	affected, err := s.marks.UpdateStatus(ctx, subject.ID, string(cie), from, to)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().
		Int64("subjectID", subject.ID).
		Str("cieType", string(cie)).
		Str("status", string(to)).
		Int64("affected", affected).
		Int64("actorID", actor.UserID).
		Msg("Mark status changed")

	return subject, &dto.MarkWorkflowResult{
		SubjectID: subject.ID,
		CIEType:   string(cie),
		Status:    to,
		Affected:  affected,
	}, nil
}

// notify sends a workflow notice. The status change has already happened, so failures are logged.
func (s *markService) notify(ctx context.Context, ids []int64, message, category string) {
	if _, err := s.notifications.Notify(ctx, ids, message, models.NotificationInfo, category, ""); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send mark workflow notification")
	}
}

func userIDs(users []*models.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
