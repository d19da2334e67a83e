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

// IStudentRepository defines student persistence.
type IStudentRepository interface {
	// Create inserts a student; an existing register number is left untouched and reported
	// with created=false.
	Create(ctx context.Context, student *models.Student) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByRegNo(ctx context.Context, regNo string) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	// List filters by department and semester; zero values match all.
	List(ctx context.Context, department string, semester int) ([]*models.Student, error)
	Count(ctx context.Context, department string) (int, error)
	CountBySubjects(ctx context.Context, subjects []*models.Subject) (int, error)
	Departments(ctx context.Context) ([]string, error)
	UserIDs(ctx context.Context, department string, semester int) ([]int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Student, error)
}

// StudentRepository is the pgx implementation of IStudentRepository.
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: statementBuilder()}
}

var studentColumns = []string{
	"id", "reg_no", "name", "department", "semester", "COALESCE(section, '')",
	"COALESCE(email, '')", "COALESCE(phone, '')", "COALESCE(parent_phone, '')", "user_id",
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	if err := row.Scan(&s.ID, &s.RegNo, &s.Name, &s.Department, &s.Semester, &s.Section,
		&s.Email, &s.Phone, &s.ParentPhone, &s.UserID); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a student unless the register number is already taken.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) (bool, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("reg_no", "name", "department", "semester", "section", "email", "phone", "parent_phone", "user_id").
		Values(s.RegNo, s.Name, s.Department, s.Semester, nullIfEmpty(s.Section), nullIfEmpty(s.Email),
			nullIfEmpty(s.Phone), nullIfEmpty(s.ParentPhone), s.UserID).
		Suffix("ON CONFLICT (reg_no) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error creating student: %w", err)
	}
	return true, nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *StudentRepository) GetByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Expr("UPPER(reg_no) = UPPER(?)", regNo))
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

func (r *StudentRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Student, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) List(ctx context.Context, department string, semester int) ([]*models.Student, error) {
	q := r.sb.Select(studentColumns...).From("students").OrderBy("reg_no")
	if department != "" {
		q = q.Where(squirrel.Eq{"department": department})
	}
	if semester > 0 {
		q = q.Where(squirrel.Eq{"semester": semester})
	}
	return r.list(ctx, q)
}

func (r *StudentRepository) Count(ctx context.Context, department string) (int, error) {
	q := r.sb.Select("COUNT(*)").From("students")
	if department != "" {
		q = q.Where(squirrel.Eq{"department": department})
	}
	return r.count(ctx, q)
}

// CountBySubjects sums the class sizes of subjects, a class being the students of the
// subject's department and semester.
func (r *StudentRepository) CountBySubjects(ctx context.Context, subjects []*models.Subject) (int, error) {
	total := 0
	for _, sub := range subjects {
		n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("students").
			Where(squirrel.Eq{"department": sub.Department, "semester": sub.Semester}))
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *StudentRepository) count(ctx context.Context, q squirrel.SelectBuilder) (int, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return n, nil
}

// Departments lists every department that has students or subjects.
func (r *StudentRepository) Departments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT department FROM students
		UNION
		SELECT department FROM subjects
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// UserIDs returns the login accounts of students in a department and semester.
func (r *StudentRepository) UserIDs(ctx context.Context, department string, semester int) ([]int64, error) {
	q := r.sb.Select("user_id").From("students").Where("user_id IS NOT NULL").OrderBy("user_id")
	if department != "" {
		q = q.Where(squirrel.Eq{"department": department})
	}
	if semester > 0 {
		q = q.Where(squirrel.Eq{"semester": semester})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student user ids query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing student user ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// Search matches name or register number case-insensitively.
func (r *StudentRepository) Search(ctx context.Context, query string, limit int) ([]*models.Student, error) {
	pattern := likePattern(query)
	return r.list(ctx, r.sb.Select(studentColumns...).From("students").
		Where(squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"reg_no": pattern}}).
		OrderBy("name").
		Limit(uint64(limit)))
}
