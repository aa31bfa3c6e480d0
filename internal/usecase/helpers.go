package usecase

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newID() uuid.UUID {
	return uuid.New()
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newValidationError(field, "must be a valid UUID")
	}
	return id, nil
}

// findUserByIdentifier tries the identifier as an email first, then as a username.
func findUserByIdentifier(ctx context.Context, users repository.UserRepository, identifier string) (*entity.User, error) {
	user, err := users.FindByEmail(ctx, strings.ToLower(identifier))
	if err != nil || user != nil {
		return user, err
	}
	return users.FindByUsername(ctx, identifier)
}

// ensureCredentialsAvailable reports ErrDuplicateCredential when email or
// username belongs to a user other than self. Empty values are skipped.
func ensureCredentialsAvailable(ctx context.Context, users repository.UserRepository, log *zap.Logger, email, username string, self *entity.User) error {
	taken := func(u *entity.User) bool {
		return u != nil && (self == nil || u.ID != self.ID)
	}

	if email != "" {
		existing, err := users.FindByEmail(ctx, email)
		if err != nil {
			log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken(existing) {
			return fmt.Errorf("email %s: %w", email, ErrDuplicateCredential)
		}
	}

	if username != "" {
		existing, err := users.FindByUsername(ctx, username)
		if err != nil {
			log.Error("Failed to check username", zap.Error(err), zap.String("username", username))
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken(existing) {
			return fmt.Errorf("username %s: %w", username, ErrDuplicateCredential)
		}
	}
	return nil
}
