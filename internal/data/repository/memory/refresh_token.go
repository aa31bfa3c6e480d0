package memory

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"

	"github.com/google/uuid"
)

type refreshTokenRepository struct {
	t *table[string, entity.RefreshToken]
}

func NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &refreshTokenRepository{t: newTable[string, entity.RefreshToken]()}
}

func (r *refreshTokenRepository) Create(_ context.Context, token *entity.RefreshToken) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.rows[token.TokenHash]; ok {
		return fmt.Errorf("create refresh token: %w", repository.ErrDuplicate)
	}
	r.t.put(token.TokenHash, *token)
	return nil
}

func (r *refreshTokenRepository) FindByHash(_ context.Context, hash string) (*entity.RefreshToken, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	rec, ok := r.t.rows[hash]
	if !ok {
		return nil, nil
	}
	tok := rec.value
	return &tok, nil
}

func (r *refreshTokenRepository) Revoke(_ context.Context, hash string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	rec, ok := r.t.rows[hash]
	if !ok || rec.value.RevokedAt != nil {
		return fmt.Errorf("revoke refresh token: %w", repository.ErrNotFound)
	}
	now := time.Now().UTC()
	rec.value.RevokedAt = &now
	return nil
}

func (r *refreshTokenRepository) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range r.t.rows {
		if rec.value.UserID == userID && rec.value.RevokedAt == nil {
			rec.value.RevokedAt = &now
		}
	}
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	var n int64
	for hash, rec := range r.t.rows {
		if rec.value.RevokedAt != nil || rec.value.ExpiresAt.Before(cutoff) {
			delete(r.t.rows, hash)
			n++
		}
	}
	return n, nil
}
