package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/db"
	"github.com/yigit/iatracker/internal/pkg/logger"
)

// MarkFilter narrows mark listings. Zero fields match all.
type MarkFilter struct {
	// Department matches the department of the subject, not of the student.
	Department string
	SubjectIDs []int64
	StudentID  int64
	CIEType    string
	Status     analytics.MarkStatus
}

// MarkUpsert is one mark to write.
type MarkUpsert struct {
	StudentID int64
	SubjectID int64
	CIEType   string
	Marks     *float64
	MaxMarks  float64
}

// UpsertOutcome counts the fate of a batch.
type UpsertOutcome struct {
	Updated int
	Skipped int
	Locked  int
}

// IMarkRepository defines CIE mark persistence. Reads come back as analytics.MarkRecord.
type IMarkRepository interface {
	List(ctx context.Context, filter MarkFilter) ([]analytics.MarkRecord, error)
	// UpsertBatch writes marks in one transaction. Entries naming unknown students or
	// subjects are skipped; entries whose stored status is APPROVED are left untouched and
	// counted as locked. Written marks return to PENDING.
	UpsertBatch(ctx context.Context, entries []MarkUpsert) (UpsertOutcome, error)
	// UpdateStatus moves the marks of one CIE of a subject from any of from to to.
	UpdateStatus(ctx context.Context, subjectID int64, cieType string, from []analytics.MarkStatus, to analytics.MarkStatus) (int64, error)
}

// MarkRepository is the pgx implementation of IMarkRepository.
type MarkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(db *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{db: db, sb: statementBuilder()}
}

// markRow is a cie_marks row joined with its student and subject.
type markRow struct {
	ID          int64
	StudentID   int64
	SubjectID   int64
	CIEType     string
	Marks       *float64
	MaxMarks    *float64
	Status      *string
	StudentName string
	RegNo       string
	Section     string
	SubjectName string
	SubjectCode string
}

// toMarkRecord is the single place where stored marks are normalised for the engine.
func toMarkRecord(row markRow) analytics.MarkRecord {
	rec := analytics.MarkRecord{
		ID:          row.ID,
		StudentID:   row.StudentID,
		SubjectID:   row.SubjectID,
		CIEType:     strings.TrimSpace(row.CIEType),
		Marks:       row.Marks,
		MaxMarks:    analytics.DefaultMaxMarks,
		Status:      analytics.StatusPending,
		StudentName: row.StudentName,
		RegNo:       row.RegNo,
		Section:     row.Section,
		SubjectName: row.SubjectName,
		SubjectCode: row.SubjectCode,
	}
	if row.MaxMarks != nil && *row.MaxMarks > 0 {
		rec.MaxMarks = *row.MaxMarks
	}
	if row.Status != nil && strings.TrimSpace(*row.Status) != "" {
		rec.Status = analytics.MarkStatus(strings.ToUpper(strings.TrimSpace(*row.Status)))
	}
	return rec
}

func (r *MarkRepository) listQuery(filter MarkFilter) squirrel.SelectBuilder {
	q := r.sb.Select(
		"m.id", "m.student_id", "m.subject_id", "m.cie_type", "m.marks", "m.max_marks", "m.status",
		"st.name", "st.reg_no", "COALESCE(st.section, '')", "sub.name", "sub.code",
	).
		From("cie_marks m").
		Join("students st ON st.id = m.student_id").
		Join("subjects sub ON sub.id = m.subject_id").
		OrderBy("m.subject_id", "m.student_id", "m.cie_type")

	if filter.Department != "" {
		q = q.Where(squirrel.Eq{"sub.department": filter.Department})
	}
	if filter.SubjectIDs != nil {
		q = q.Where(squirrel.Eq{"m.subject_id": filter.SubjectIDs})
	}
	if filter.StudentID > 0 {
		q = q.Where(squirrel.Eq{"m.student_id": filter.StudentID})
	}
	if filter.CIEType != "" {
		q = q.Where("UPPER(m.cie_type) = UPPER(?)", filter.CIEType)
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"m.status": string(filter.Status)})
	}
	return q
}

// List returns the marks matching filter.
func (r *MarkRepository) List(ctx context.Context, filter MarkFilter) ([]analytics.MarkRecord, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list marks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list marks query")
		return nil, fmt.Errorf("error listing marks: %w", err)
	}
	defer rows.Close()

	records := make([]analytics.MarkRecord, 0)
	for rows.Next() {
		var row markRow
		if err := rows.Scan(&row.ID, &row.StudentID, &row.SubjectID, &row.CIEType, &row.Marks, &row.MaxMarks,
			&row.Status, &row.StudentName, &row.RegNo, &row.Section, &row.SubjectName, &row.SubjectCode); err != nil {
			return nil, fmt.Errorf("error scanning mark row: %w", err)
		}
		records = append(records, toMarkRecord(row))
	}
	return records, rows.Err()
}

func (r *MarkRepository) upsertQuery(e MarkUpsert) (string, []interface{}, error) {
	maxMarks := e.MaxMarks
	if maxMarks <= 0 {
		maxMarks = analytics.DefaultMaxMarks
	}
	return r.sb.Insert("cie_marks").
		Columns("student_id", "subject_id", "cie_type", "marks", "max_marks", "status", "updated_at").
		Values(e.StudentID, e.SubjectID, strings.ToUpper(strings.TrimSpace(e.CIEType)), e.Marks, maxMarks,
			string(analytics.StatusPending), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (student_id, subject_id, cie_type) DO UPDATE
			SET marks = EXCLUDED.marks, max_marks = EXCLUDED.max_marks, status = EXCLUDED.status, updated_at = NOW()
			WHERE cie_marks.status <> 'APPROVED'
			RETURNING id`).
		ToSql()
}

// UpsertBatch writes entries in one transaction.
func (r *MarkRepository) UpsertBatch(ctx context.Context, entries []MarkUpsert) (UpsertOutcome, error) {
	var out UpsertOutcome
	if len(entries) == 0 {
		return out, nil
	}

	studentIDs := make([]int64, 0, len(entries))
	subjectIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		studentIDs = append(studentIDs, e.StudentID)
		subjectIDs = append(subjectIDs, e.SubjectID)
	}

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		students, err := existingIDs(ctx, tx, "students", studentIDs)
		if err != nil {
			return err
		}
		subjects, err := existingIDs(ctx, tx, "subjects", subjectIDs)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if _, ok := students[e.StudentID]; !ok {
				out.Skipped++
				continue
			}
			if _, ok := subjects[e.SubjectID]; !ok {
				out.Skipped++
				continue
			}

			sql, args, err := r.upsertQuery(e)
			if err != nil {
				return fmt.Errorf("failed to build upsert mark query: %w", err)
			}
			var id int64
			err = tx.QueryRow(ctx, sql, args...).Scan(&id)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				out.Locked++
			case err != nil:
				return fmt.Errorf("error upserting mark: %w", err)
			default:
				out.Updated++
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int("entries", len(entries)).Msg("Mark batch failed")
		return UpsertOutcome{}, err
	}
	return out, nil
}

func existingIDs(ctx context.Context, tx pgx.Tx, table string, ids []int64) (map[int64]struct{}, error) {
	rows, err := tx.Query(ctx, "SELECT id FROM "+table+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", table, err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error reading %s ids: %w", table, err)
	}
	set := make(map[int64]struct{}, len(found))
	for _, id := range found {
		set[id] = struct{}{}
	}
	return set, nil
}

// UpdateStatus moves the marks of one CIE of a subject between workflow states.
func (r *MarkRepository) UpdateStatus(ctx context.Context, subjectID int64, cieType string, from []analytics.MarkStatus, to analytics.MarkStatus) (int64, error) {
	fromStr := make([]string, len(from))
	for i, s := range from {
		fromStr[i] = string(s)
	}

	sql, args, err := r.sb.Update("cie_marks").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"subject_id": subjectID, "status": fromStr}).
		Where("UPPER(cie_type) = UPPER(?)", cieType).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update mark status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error updating mark status: %w", err)
	}
	return tag.RowsAffected(), nil
}
