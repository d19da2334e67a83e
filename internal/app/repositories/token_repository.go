package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/dberrors"
	"github.com/yigit/iatracker/internal/pkg/logger"
)

// ITokenRepository defines refresh token persistence.
type ITokenRepository interface {
	Create(ctx context.Context, token string, userID int64, expiry time.Time) error
	// Get returns a usable token: revoked or expired tokens are reported as errors.
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	// Revoke marks an active token revoked. It fails with ErrTokenInvalid when the token is
	// unknown or already revoked, so a token can be rotated at most once.
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// RevokedTokenRetention is how long revoked tokens are kept before CleanupExpired removes them.
const RevokedTokenRetention = 30 * 24 * time.Hour

// TokenRepository handles token database operations
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db, sb: statementBuilder()}
}

// Create stores a new refresh token
func (r *TokenRepository) Create(ctx context.Context, token string, userID int64, expiry time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked", "created_at").
		Values(token, userID, expiry, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_pkey") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// Get retrieves token information by value
func (r *TokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := r.sb.Select("token", "user_id", "expiry_date", "is_revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	var t models.RefreshToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.Token, &t.UserID, &t.ExpiryDate, &t.IsRevoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving token: %w", err)
	}

	if t.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if t.ExpiryDate.Before(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return &t, nil
}

func (r *TokenRepository) revokeQuery(token string) (string, []interface{}, error) {
	return r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token, "is_revoked": false}).
		ToSql()
}

// Revoke revokes a token that is still active.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := r.revokeQuery(token)
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser revokes every active token of a user, e.g. after a password reset.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke user tokens query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) cleanupQuery(now time.Time) (string, []interface{}, error) {
	return r.sb.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": now.Add(-RevokedTokenRetention)},
			},
		}).
		ToSql()
}

// CleanupExpired removes expired tokens and revoked tokens older than RevokedTokenRetention.
func (r *TokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.cleanupQuery(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}
	logger.Info().Int64("deletedCount", tag.RowsAffected()).Msg("Cleaned up expired/old revoked tokens")
	return tag.RowsAffected(), nil
}
