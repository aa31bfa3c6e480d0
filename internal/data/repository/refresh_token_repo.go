package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/data/entity"
	"marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, hash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefreshTokenRepository(db database.PgxIface, log *zap.Logger) RefreshTokenRepository {
	return &refreshTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "refresh_token")),
	}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create refresh token: %w", ErrDuplicate)
		}
		r.log.Error("Failed to create refresh token",
			zap.Error(err),
			zap.String("user_id", token.UserID.String()),
		)
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

// FindByHash returns the token regardless of expiry or revocation.
func (r *refreshTokenRepository) FindByHash(ctx context.Context, hash string) (*entity.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var token entity.RefreshToken
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find refresh token", zap.Error(err))
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, hash string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, hash)
	if err != nil {
		r.log.Error("Failed to revoke refresh token", zap.Error(err))
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("revoke refresh token: %w", ErrNotFound)
	}

	return nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.log.Error("Failed to revoke user refresh tokens",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("revoke refresh tokens of %s: %w", userID, err)
	}

	return nil
}

// DeleteExpired drops revoked tokens and tokens that expired more than a week ago.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE revoked_at IS NOT NULL OR expires_at < NOW() - INTERVAL '7 days'
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to clean expired refresh tokens", zap.Error(err))
		return 0, fmt.Errorf("clean refresh tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
