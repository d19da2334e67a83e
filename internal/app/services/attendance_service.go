package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/helpers"
)

// AttendanceService records class attendance and summarises it for students.
type AttendanceService interface {
	Record(ctx context.Context, actor Actor, req dto.AttendanceRequest) (int, error)
	ForSubject(ctx context.Context, actor Actor, subjectID int64, date string) ([]*models.Attendance, error)
	MySummary(ctx context.Context, actor Actor) ([]dto.AttendanceSummary, error)
}

type attendanceService struct {
	attendance repositories.IAttendanceRepository
	subjects   repositories.ISubjectRepository
	students   repositories.IStudentRepository
	logger     zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendance repositories.IAttendanceRepository, subjects repositories.ISubjectRepository, students repositories.IStudentRepository, logger zerolog.Logger) AttendanceService {
	return &attendanceService{attendance: attendance, subjects: subjects, students: students, logger: logger}
}

func (s *attendanceService) Record(ctx context.Context, actor Actor, req dto.AttendanceRequest) (int, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return 0, apperrors.NewBadRequestError(err.Error())
	}
	subject, err := authorizeSubject(ctx, s.subjects, actor, req.SubjectID)
	if err != nil {
		return 0, err
	}

	facultyID := actor.UserID
	records := make([]models.Attendance, 0, len(req.Entries))
	seen := make(map[int64]int, len(req.Entries))
	for _, e := range req.Entries {
		status := models.AttendanceStatus(e.Status)
		switch status {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
		default:
			return 0, apperrors.NewBadRequestError(fmt.Sprintf("invalid attendance status %q", e.Status))
		}
		rec := models.Attendance{
			StudentID: e.StudentID,
			SubjectID: subject.ID,
			Date:      date,
			Status:    status,
			FacultyID: &facultyID,
		}
		// The last entry for a student wins; one statement cannot touch a row twice.
		if i, dup := seen[e.StudentID]; dup {
			records[i] = rec
			continue
		}
		seen[e.StudentID] = len(records)
		records = append(records, rec)
	}

	n, err := s.attendance.Record(ctx, records)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("subjectID", subject.ID).Str("date", req.Date).Int("records", n).Msg("Attendance recorded")
	return n, nil
}

func (s *attendanceService) ForSubject(ctx context.Context, actor Actor, subjectID int64, date string) ([]*models.Attendance, error) {
	if _, err := authorizeSubject(ctx, s.subjects, actor, subjectID); err != nil {
		return nil, err
	}
	var day *time.Time
	if date != "" {
		d, err := helpers.ParseDate(date)
		if err != nil {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		day = &d
	}
	return s.attendance.ListBySubject(ctx, subjectID, day)
}

// MySummary returns per-subject attendance for the calling student. LATE counts as present.
func (s *attendanceService) MySummary(ctx context.Context, actor Actor) ([]dto.AttendanceSummary, error) {
	student, err := resolveStudent(ctx, s.students, actor)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	bySubject := make(map[int64]*dto.AttendanceSummary)
	for _, r := range records {
		sum, ok := bySubject[r.SubjectID]
		if !ok {
			sum = &dto.AttendanceSummary{SubjectID: r.SubjectID, SubjectName: r.SubjectName}
			bySubject[r.SubjectID] = sum
		}
		sum.Total++
		if r.Status.CountsAsPresent() {
			sum.Present++
		}
	}

	summaries := make([]dto.AttendanceSummary, 0, len(bySubject))
	for _, sum := range bySubject {
		sum.Percentage = helpers.Percentage(sum.Present, sum.Total)
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].SubjectID < summaries[j].SubjectID })
	return summaries, nil
}
