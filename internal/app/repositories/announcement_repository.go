package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

// AnnouncementFilter narrows announcement listings. Zero fields match all.
type AnnouncementFilter struct {
	Department string
	Semester   int
	FacultyID  int64
	SubjectIDs []int64
	Status     models.AnnouncementStatus
}

// IAnnouncementRepository defines CIE announcement persistence.
type IAnnouncementRepository interface {
	// Upsert creates the announcement or replaces the one with the same subject and CIE number.
	Upsert(ctx context.Context, a *models.Announcement) error
	Get(ctx context.Context, subjectID int64, cieNumber int) (*models.Announcement, error)
	List(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, error)
}

// AnnouncementRepository is the pgx implementation of IAnnouncementRepository.
type AnnouncementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: db, sb: statementBuilder()}
}

func (r *AnnouncementRepository) Upsert(ctx context.Context, a *models.Announcement) error {
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = models.DefaultDurationMinutes
	}
	if a.Status == "" {
		a.Status = models.AnnouncementScheduled
	}

	sql, args, err := r.sb.Insert("announcements").
		Columns("subject_id", "cie_number", "scheduled_date", "start_time", "duration_minutes",
			"exam_room", "instructions", "syllabus_coverage", "status", "faculty_id").
		Values(a.SubjectID, a.CIENumber, a.ScheduledDate, nullIfEmpty(a.StartTime), a.DurationMinutes,
			nullIfEmpty(a.ExamRoom), nullIfEmpty(a.Instructions), nullIfEmpty(a.SyllabusCoverage),
			string(a.Status), a.FacultyID).
		Suffix(`ON CONFLICT (subject_id, cie_number) DO UPDATE SET
			scheduled_date = EXCLUDED.scheduled_date,
			start_time = EXCLUDED.start_time,
			duration_minutes = EXCLUDED.duration_minutes,
			exam_room = EXCLUDED.exam_room,
			instructions = EXCLUDED.instructions,
			syllabus_coverage = EXCLUDED.syllabus_coverage,
			status = EXCLUDED.status,
			faculty_id = COALESCE(EXCLUDED.faculty_id, announcements.faculty_id)
			RETURNING id, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert announcement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("error saving announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) selectAnnouncements() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.subject_id", "a.cie_number", "a.scheduled_date", "COALESCE(a.start_time, '')",
		"a.duration_minutes", "COALESCE(a.exam_room, '')", "COALESCE(a.instructions, '')",
		"COALESCE(a.syllabus_coverage, '')", "a.status", "a.faculty_id", "a.created_at",
		"s.name", "s.code", "s.department", "s.semester",
	).
		From("announcements a").
		Join("subjects s ON s.id = a.subject_id")
}

func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(&a.ID, &a.SubjectID, &a.CIENumber, &a.ScheduledDate, &a.StartTime,
		&a.DurationMinutes, &a.ExamRoom, &a.Instructions, &a.SyllabusCoverage, &a.Status,
		&a.FacultyID, &a.CreatedAt, &a.SubjectName, &a.SubjectCode, &a.Department, &a.Semester)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) Get(ctx context.Context, subjectID int64, cieNumber int) (*models.Announcement, error) {
	sql, args, err := r.selectAnnouncements().
		Where(squirrel.Eq{"a.subject_id": subjectID, "a.cie_number": cieNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}
	a, err := scanAnnouncement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}
	return a, nil
}

// List returns announcements ordered by date, earliest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, error) {
	q := r.selectAnnouncements().OrderBy("a.scheduled_date", "a.start_time", "a.id")
	if filter.Department != "" {
		q = q.Where(squirrel.Eq{"s.department": filter.Department})
	}
	if filter.Semester > 0 {
		q = q.Where(squirrel.Eq{"s.semester": filter.Semester})
	}
	if filter.FacultyID > 0 {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"a.faculty_id": filter.FacultyID},
			squirrel.Eq{"s.instructor_id": filter.FacultyID},
		})
	}
	if filter.SubjectIDs != nil {
		q = q.Where(squirrel.Eq{"a.subject_id": filter.SubjectIDs})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"a.status": string(filter.Status)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
