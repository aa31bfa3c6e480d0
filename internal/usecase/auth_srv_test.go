package usecase

import (
	"context"
	"testing"

	"marketplace/internal/data/entity"
	"marketplace/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerReq(username string) *request.RegisterRequest {
	return &request.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Phone:    "+628110001",
		Password: "secret123",
	}
}

func TestAuthService_RegisterCreatesSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := registerReq("alice")
	req.Email = "  Alice@Example.com "
	user, err := f.svc.Auth.Register(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, entity.RoleSeller, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsBanned)

	stored, err := f.repo.User.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Auth.Register(ctx, registerReq("alice"))
	require.NoError(t, err)

	// same email, different username
	dupEmail := registerReq("alice2")
	dupEmail.Email = "alice@example.com"
	_, err = f.svc.Auth.Register(ctx, dupEmail)
	assert.ErrorIs(t, err, ErrDuplicateCredential)

	// same username, different email
	dupName := registerReq("alice")
	dupName.Email = "other@example.com"
	_, err = f.svc.Auth.Register(ctx, dupName)
	assert.ErrorIs(t, err, ErrDuplicateCredential)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	req := registerReq("al")
	req.Password = "123"
	_, err := f.svc.Auth.Register(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "bob", entity.RoleSeller)

	byEmail, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "BOB@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.AccessToken)
	assert.NotEmpty(t, byEmail.RefreshToken)
	assert.Equal(t, "Bearer", byEmail.TokenType)
	assert.Equal(t, seller.ID.String(), byEmail.User.ID)

	byName, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "bob", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, seller.ID.String(), byName.User.ID)

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "bob", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthService_LoginBanned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "carol", entity.RoleSeller)
	seller.IsBanned = true
	require.NoError(t, f.repo.User.Update(ctx, seller))

	_, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "carol", Password: "secret123"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "dave", entity.RoleSeller)

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "dave", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := f.svc.Auth.Refresh(ctx, &request.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.svc.Auth.Refresh(ctx, &request.RefreshRequest{RefreshToken: "not-a-token"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, f.svc.Auth.Logout(ctx, &request.RefreshRequest{RefreshToken: login.RefreshToken}))
	// logging out twice is fine
	require.NoError(t, f.svc.Auth.Logout(ctx, &request.RefreshRequest{RefreshToken: login.RefreshToken}))

	_, err = f.svc.Auth.Refresh(ctx, &request.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_AuthenticateUsesStoredState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "erin", entity.RoleSeller)

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Username: "erin", Password: "secret123"})
	require.NoError(t, err)

	id, err := f.svc.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, entity.RoleSeller, id.Role)

	// role change applies to an already issued token
	user.Role = entity.RoleAdmin
	require.NoError(t, f.repo.User.Update(ctx, user))
	id, err = f.svc.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, id.Role)

	user.IsBanned = true
	require.NoError(t, f.repo.User.Update(ctx, user))
	_, err = f.svc.Auth.Authenticate(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.repo.User.Delete(ctx, user.ID))
	_, err = f.svc.Auth.Authenticate(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
