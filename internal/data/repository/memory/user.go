package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	t *table[uuid.UUID, entity.User]
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{t: newTable[uuid.UUID, entity.User]()}
}

// conflict reports whether another live user already holds email or username.
func (r *userRepository) conflict(u *entity.User) bool {
	for id, rec := range r.t.rows {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(rec.value.Email, u.Email) || rec.value.Username == u.Username {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.conflict(user) {
		return fmt.Errorf("create user %s: %w", user.Email, repository.ErrDuplicate)
	}
	r.t.put(user.ID, *user)
	return nil
}

func (r *userRepository) find(match func(*entity.User) bool) *entity.User {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	for _, rec := range r.t.rows {
		if match(&rec.value) {
			u := rec.value
			return &u
		}
	}
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *userRepository) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.t.mu.RLock()
	all := r.t.newestFirst(
		func(u entity.User) time.Time { return u.CreatedAt },
		func(entity.User) bool { return true },
	)
	r.t.mu.RUnlock()

	users := make([]*entity.User, 0, limit)
	for i := offset; i < len(all) && len(users) < limit; i++ {
		u := all[i]
		users = append(users, &u)
	}
	return users, nil
}

func (r *userRepository) CountAll(_ context.Context) (int64, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return int64(len(r.t.rows)), nil
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.rows[user.ID]; !ok {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrNotFound)
	}
	if r.conflict(user) {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrDuplicate)
	}
	r.t.put(user.ID, *user)
	return nil
}

func (r *userRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.rows[id]; !ok {
		return fmt.Errorf("delete user %s: %w", id, repository.ErrNotFound)
	}
	delete(r.t.rows, id)
	return nil
}
