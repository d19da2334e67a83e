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

// SubjectFilter narrows subject listings. Zero fields match all.
type SubjectFilter struct {
	Department   string
	Semester     int
	InstructorID int64
}

// ISubjectRepository defines subject persistence.
type ISubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetByCode(ctx context.Context, code string) (*models.Subject, error)
	List(ctx context.Context, filter SubjectFilter) ([]*models.Subject, error)
	AssignInstructor(ctx context.Context, subjectID, instructorID int64) error
}

// SubjectRepository is the pgx implementation of ISubjectRepository.
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db, sb: statementBuilder()}
}

func (r *SubjectRepository) selectSubjects() squirrel.SelectBuilder {
	return r.sb.Select("s.id", "s.name", "s.code", "s.department", "s.semester", "s.instructor_id", "COALESCE(u.full_name, '')").
		From("subjects s").
		LeftJoin("users u ON u.id = s.instructor_id")
}

func scanSubject(row pgx.Row) (*models.Subject, error) {
	var s models.Subject
	if err := row.Scan(&s.ID, &s.Name, &s.Code, &s.Department, &s.Semester, &s.InstructorID, &s.InstructorName); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a subject unless the code is already taken.
func (r *SubjectRepository) Create(ctx context.Context, s *models.Subject) (bool, error) {
	sql, args, err := r.sb.Insert("subjects").
		Columns("name", "code", "department", "semester", "instructor_id").
		Values(s.Name, s.Code, s.Department, s.Semester, s.InstructorID).
		Suffix("ON CONFLICT (code) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build create subject query: %w", err)
	}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error creating subject: %w", err)
	}
	return true, nil
}

func (r *SubjectRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Subject, error) {
	sql, args, err := r.selectSubjects().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}
	s, err := scanSubject(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}
	return s, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Expr("UPPER(s.code) = UPPER(?)", code))
}

// List returns subjects ordered by semester then code.
func (r *SubjectRepository) List(ctx context.Context, filter SubjectFilter) ([]*models.Subject, error) {
	q := r.selectSubjects().OrderBy("s.semester", "s.code")
	if filter.Department != "" {
		q = q.Where(squirrel.Eq{"s.department": filter.Department})
	}
	if filter.Semester > 0 {
		q = q.Where(squirrel.Eq{"s.semester": filter.Semester})
	}
	if filter.InstructorID > 0 {
		q = q.Where(squirrel.Eq{"s.instructor_id": filter.InstructorID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]*models.Subject, 0)
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// AssignInstructor sets the instructor of a subject.
func (r *SubjectRepository) AssignInstructor(ctx context.Context, subjectID, instructorID int64) error {
	sql, args, err := r.sb.Update("subjects").
		Set("instructor_id", instructorID).
		Where(squirrel.Eq{"id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign instructor query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error assigning instructor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}
