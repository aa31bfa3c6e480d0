package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var userCols = []string{"id", "username", "email", "password", "phone", "role", "is_banned", "created_at", "updated_at"}

func TestUserCreate_Success(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	u := &entity.User{
		Base:     entity.NewBase(time.Now()),
		Username: "alice",
		Email:    "alice@example.com",
		Phone:    "+62811",
		Role:     entity.RoleSeller,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, "alice", "alice@example.com", "", "+62811", "seller", false, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_UniqueViolationMapsToDuplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{Base: entity.NewBase(time.Now()), Role: entity.RoleSeller})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserCreate_DBErrorIsWrapped(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.test"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserFindByEmail_Found(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM users WHERE email = \$1 AND deleted_at IS NULL`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(id, "alice", "alice@example.com", "hash", "+62811", "admin", true, now, now))

	got, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, entity.RoleAdmin, got.Role)
	assert.True(t, got.IsBanned)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestUserFindByUsername_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserFindByID_UnknownRoleIsError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(id, "bob", "bob@example.com", "hash", "", "superuser", false, now, now))

	got, err := repo.FindByID(context.Background(), id)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestUserFindAll_NewestFirstPaged(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	now := time.Now()
	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 40).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(uuid.New(), "b", "b@x.test", "h", "", "seller", false, now, now).
			AddRow(uuid.New(), "a", "a@x.test", "h", "", "seller", false, now.Add(-time.Hour), now))

	users, err := repo.FindAll(context.Background(), 20, 40)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b", users[0].Username)
}

func TestUserUpdate_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.User{Base: entity.NewBase(time.Now()), Role: entity.RoleSeller})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDelete_SoftDeletes(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zaptest.NewLogger(t))

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at = NOW()")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
