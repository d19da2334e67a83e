package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/iatracker/internal/app/models"
)

// IAttendanceRepository defines attendance persistence.
type IAttendanceRepository interface {
	// Record upserts one session's statuses and returns how many rows were written.
	Record(ctx context.Context, records []models.Attendance) (int, error)
	// ListBySubject returns a subject's attendance, optionally for a single day.
	ListBySubject(ctx context.Context, subjectID int64, date *time.Time) ([]*models.Attendance, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Attendance, error)
}

// AttendanceRepository is the pgx implementation of IAttendanceRepository.
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: statementBuilder()}
}

func (r *AttendanceRepository) Record(ctx context.Context, records []models.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	q := r.sb.Insert("attendance").Columns("student_id", "subject_id", "date", "status", "faculty_id")
	for _, rec := range records {
		q = q.Values(rec.StudentID, rec.SubjectID, rec.Date, string(rec.Status), rec.FacultyID)
	}
	sql, args, err := q.Suffix(`ON CONFLICT (student_id, subject_id, date) DO UPDATE
		SET status = EXCLUDED.status, faculty_id = EXCLUDED.faculty_id`).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build record attendance query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error recording attendance: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *AttendanceRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Attendance, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendance query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Attendance, error) {
		var a models.Attendance
		err := row.Scan(&a.ID, &a.StudentID, &a.SubjectID, &a.Date, &a.Status, &a.FacultyID,
			&a.StudentName, &a.RegNo, &a.SubjectName)
		return &a, err
	})
}

func (r *AttendanceRepository) selectAttendance() squirrel.SelectBuilder {
	return r.sb.Select("a.id", "a.student_id", "a.subject_id", "a.date", "a.status", "a.faculty_id",
		"st.name", "st.reg_no", "sub.name").
		From("attendance a").
		Join("students st ON st.id = a.student_id").
		Join("subjects sub ON sub.id = a.subject_id")
}

func (r *AttendanceRepository) ListBySubject(ctx context.Context, subjectID int64, date *time.Time) ([]*models.Attendance, error) {
	q := r.selectAttendance().Where(squirrel.Eq{"a.subject_id": subjectID}).OrderBy("a.date DESC", "st.reg_no")
	if date != nil {
		q = q.Where(squirrel.Eq{"a.date": *date})
	}
	return r.list(ctx, q)
}

func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Attendance, error) {
	return r.list(ctx, r.selectAttendance().Where(squirrel.Eq{"a.student_id": studentID}).OrderBy("a.subject_id", "a.date"))
}
