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
	"github.com/yigit/iatracker/internal/pkg/dberrors"
	"github.com/yigit/iatracker/internal/pkg/logger"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// ListByRoles returns users holding any of roles. An empty department matches all.
	ListByRoles(ctx context.Context, roles []models.RoleType, department string) ([]*models.User, error)
	CountByRoles(ctx context.Context, roles []models.RoleType) (int, error)
	Search(ctx context.Context, query string, roles []models.RoleType, limit int) ([]*models.User, error)
}

// UserRepository is the pgx implementation of IUserRepository.
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: statementBuilder()}
}

var userColumns = []string{
	"id", "username", "password", "full_name", "COALESCE(email, '')", "role",
	"COALESCE(department, '')", "COALESCE(designation, '')", "COALESCE(section, '')",
	"created_at", "updated_at",
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FullName, &u.Email, &u.Role,
		&u.Department, &u.Designation, &u.Section, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func roleStrings(roles []models.RoleType) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// Create inserts a user and sets its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("username", "password", "full_name", "email", "role", "department", "designation", "section").
		Values(user.Username, user.Password, user.FullName, nullIfEmpty(user.Email), string(user.Role),
			nullIfEmpty(user.Department), nullIfEmpty(user.Designation), nullIfEmpty(user.Section)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, fmt.Sprintf("username %s already exists", user.Username))
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password", passwordHash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListByRoles lists users of the given roles ordered by name.
func (r *UserRepository) ListByRoles(ctx context.Context, roles []models.RoleType, department string) ([]*models.User, error) {
	q := r.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"role": roleStrings(roles)}).
		OrderBy("full_name", "id")
	if department != "" {
		q = q.Where(squirrel.Eq{"department": department})
	}
	return r.list(ctx, q)
}

// CountByRoles counts users of the given roles.
func (r *UserRepository) CountByRoles(ctx context.Context, roles []models.RoleType) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role": roleStrings(roles)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

// Search matches name or username case-insensitively.
func (r *UserRepository) Search(ctx context.Context, query string, roles []models.RoleType, limit int) ([]*models.User, error) {
	pattern := likePattern(query)
	q := r.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"role": roleStrings(roles)}).
		Where(squirrel.Or{squirrel.ILike{"full_name": pattern}, squirrel.ILike{"username": pattern}}).
		OrderBy("full_name").
		Limit(uint64(limit))
	return r.list(ctx, q)
}
