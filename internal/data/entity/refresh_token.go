package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken stores only the sha256 hash of the raw token handed to the client.
type RefreshToken struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
