package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"
	"marketplace/internal/dto/request"
	"marketplace/internal/dto/response"
	"marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, actor entity.Identity) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Identity, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	DeleteSelf(ctx context.Context, actor entity.Identity) error

	// admin
	ListUsers(ctx context.Context, actor entity.Identity, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GrantAdmin(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error)
	Ban(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error)
	Unban(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actor entity.Identity, userID string) error
}

type userService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(repo *repository.Repository, config *utils.Config, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "user")),
		now:    time.Now,
	}
}

func (us *userService) GetProfile(ctx context.Context, actor entity.Identity) (*response.UserResponse, error) {
	user, err := us.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return userResponse(user), nil
}

func (us *userService) UpdateProfile(ctx context.Context, actor entity.Identity, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	// 1. Validasi
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, newValidationError("body", "at least one field is required")
	}

	// 2. Load current user
	user, err := us.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	// 3. Uniqueness re-checked against other users
	var email, username string
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		username = *req.Username
	}
	if err := ensureCredentialsAvailable(ctx, us.repo.User, us.log, email, username, user); err != nil {
		return nil, err
	}

	// 4. Apply changes
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password, us.config.Security.BcryptCost)
		if err != nil {
			us.log.Error("Failed to hash password", zap.Error(err))
			return nil, fmt.Errorf("failed to process password: %w", err)
		}
		user.PasswordHash = hashed
	}

	if err := us.save(ctx, user); err != nil {
		return nil, err
	}

	us.log.Info("Profile updated", zap.String("user_id", user.ID.String()))
	return userResponse(user), nil
}

// DeleteSelf is closed to admins; another admin has to remove the account.
func (us *userService) DeleteSelf(ctx context.Context, actor entity.Identity) error {
	if actor.Role == entity.RoleAdmin {
		return fmt.Errorf("admins cannot delete their own account: %w", ErrPreconditionFailed)
	}
	if err := us.delete(ctx, actor.UserID); err != nil {
		return err
	}
	us.log.Info("User deleted own account", zap.String("user_id", actor.UserID.String()))
	return nil
}

func (us *userService) ListUsers(ctx context.Context, actor entity.Identity, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	page := request.NewPaginatedRequest(req.Page, req.PerPage)

	users, err := us.repo.User.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", page.Page),
			zap.Int("per_page", page.PerPage),
		)
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", page.Page),
		zap.Int("per_page", page.PerPage),
	)

	return response.NewPaginatedResponse(response.UsersToResponse(users), page.Page, page.PerPage, total), nil
}

func (us *userService) GrantAdmin(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error) {
	user, err := us.adminUpdate(ctx, actor, userID, false, func(u *entity.User) {
		u.Role = entity.RoleAdmin
	})
	if err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

// Ban also revokes every refresh token so the user cannot mint new access tokens.
func (us *userService) Ban(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error) {
	user, err := us.adminUpdate(ctx, actor, userID, true, func(u *entity.User) {
		u.IsBanned = true
	})
	if err != nil {
		return nil, err
	}

	if err := us.repo.RefreshToken.RevokeAllForUser(ctx, user.ID); err != nil {
		us.log.Warn("Failed to revoke tokens of banned user", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
	return userResponse(user), nil
}

func (us *userService) Unban(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error) {
	user, err := us.adminUpdate(ctx, actor, userID, false, func(u *entity.User) {
		u.IsBanned = false
	})
	if err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

func (us *userService) DeleteUser(ctx context.Context, actor entity.Identity, userID string) error {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}
	id, err := parseID("id", userID)
	if err != nil {
		return err
	}
	if id == actor.UserID {
		return fmt.Errorf("admins cannot delete themselves here: %w", ErrPreconditionFailed)
	}

	if err := us.delete(ctx, id); err != nil {
		return err
	}
	us.log.Info("User deleted by admin",
		zap.String("user_id", id.String()),
		zap.String("admin_id", actor.UserID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func userResponse(user *entity.User) *response.UserResponse {
	resp := response.UserToResponse(user)
	return &resp
}

func (us *userService) adminUpdate(ctx context.Context, actor entity.Identity, userID string, notSelf bool, apply func(*entity.User)) (*entity.User, error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	id, err := parseID("id", userID)
	if err != nil {
		return nil, err
	}
	if notSelf && id == actor.UserID {
		return nil, fmt.Errorf("admins cannot ban themselves: %w", ErrPreconditionFailed)
	}

	user, err := us.load(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(user)
	if err := us.save(ctx, user); err != nil {
		return nil, err
	}

	us.log.Info("User updated by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.UserID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("is_banned", user.IsBanned))

	return user, nil
}

func (us *userService) load(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, nil
}

func (us *userService) save(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = us.now().UTC()
	if err := us.repo.User.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return fmt.Errorf("update user %s: %w", user.ID, ErrDuplicateCredential)
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
		}
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (us *userService) delete(ctx context.Context, id uuid.UUID) error {
	if err := us.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := us.repo.RefreshToken.RevokeAllForUser(ctx, id); err != nil {
		us.log.Warn("Failed to revoke tokens of deleted user", zap.Error(err), zap.String("user_id", id.String()))
	}
	return nil
}
