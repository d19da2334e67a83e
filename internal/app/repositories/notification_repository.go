package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

// INotificationRepository defines notification persistence.
type INotificationRepository interface {
	// CreateMany inserts notifications and fills in their IDs and creation times.
	CreateMany(ctx context.Context, notifications []*models.Notification) error
	// List returns a user's notifications, newest first. A nil isRead matches both states.
	List(ctx context.Context, userID int64, isRead *bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// NotificationRepository is the pgx implementation of INotificationRepository.
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db, sb: statementBuilder()}
}

func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := r.sb.Insert("notifications").Columns("user_id", "message", "type", "category", "link")
	for _, n := range notifications {
		if n.Type == "" {
			n.Type = models.NotificationInfo
		}
		q = q.Values(n.UserID, n.Message, string(n.Type), nullIfEmpty(n.Category), nullIfEmpty(n.Link))
	}
	sql, args, err := q.Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating notifications: %w", err)
	}
	defer rows.Close()

	// PostgreSQL returns the rows of a single multi-row INSERT in VALUES order.
	i := 0
	for rows.Next() {
		if i >= len(notifications) {
			break
		}
		if err := rows.Scan(&notifications[i].ID, &notifications[i].CreatedAt); err != nil {
			return fmt.Errorf("error scanning created notification: %w", err)
		}
		i++
	}
	return rows.Err()
}

func (r *NotificationRepository) List(ctx context.Context, userID int64, isRead *bool, limit int) ([]*models.Notification, error) {
	q := r.sb.Select("id", "user_id", "message", "type", "COALESCE(category, '')", "COALESCE(link, '')", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if isRead != nil {
		q = q.Where(squirrel.Eq{"is_read": *isRead})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Notification, error) {
		var n models.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Category, &n.Link, &n.IsRead, &n.CreatedAt)
		return &n, err
	})
}

// MarkRead marks one of the user's notifications as read. Notifications of other users
// are reported as not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unread count query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return n, nil
}
