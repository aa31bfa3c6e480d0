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

	"go.uber.org/zap"
)

const tokenTypeBearer = "Bearer"

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error)
	Logout(ctx context.Context, req *request.RefreshRequest) error
	Authenticate(ctx context.Context, token string) (entity.Identity, error)
}

type authService struct {
	repo   *repository.Repository // grouping userRepo & refreshTokenRepo
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	// 1. Validasi input
	req.Normalize()
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	// 2. Cek email & username
	if err := ensureCredentialsAvailable(ctx, s.repo.User, s.log, req.Email, req.Username, nil); err != nil {
		return nil, err
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password, s.config.Security.BcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	// 4. Create user entity, always a seller
	user := &entity.User{
		Base:         entity.NewBase(s.now()),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
		Role:         entity.RoleSeller,
	}

	// 5. Save user. A concurrent registration can still hit the unique index.
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("register %s: %w", req.Email, ErrDuplicateCredential)
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Validasi
	if err := validate(req); err != nil {
		s.log.Warn("Login validation failed", zap.Error(err))
		return nil, err
	}
	identifier := req.Identifier()

	// 2. Find user by email, then by username
	user, err := findUserByIdentifier(ctx, s.repo.User, identifier)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("identifier", identifier))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// 3. Unknown user and wrong password look the same to the caller
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("identifier", identifier))
		return nil, ErrInvalidCredential
	}

	// 4. Banned users cannot log in
	if user.IsBanned {
		s.log.Warn("Banned user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("account is banned: %w", ErrForbidden)
	}

	// 5. Issue tokens
	access, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &response.AuthResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    access.ExpiresAt,
		User:         response.UserToResponse(user),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	stored, err := s.repo.RefreshToken.FindByHash(ctx, utils.HashRefreshToken(req.RefreshToken))
	if err != nil {
		s.log.Error("Failed to find refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if stored == nil || !stored.Usable(s.now()) {
		return nil, fmt.Errorf("refresh token is invalid or expired: %w", ErrUnauthenticated)
	}

	user, err := s.repo.User.FindByID(ctx, stored.UserID)
	if err != nil {
		s.log.Error("Failed to load token owner", zap.Error(err), zap.String("user_id", stored.UserID.String()))
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if user == nil || user.IsBanned {
		return nil, fmt.Errorf("token owner is no longer active: %w", ErrUnauthenticated)
	}

	access, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &response.TokenResponse{
		AccessToken: access.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   access.ExpiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, req *request.RefreshRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	err := s.repo.RefreshToken.Revoke(ctx, utils.HashRefreshToken(req.RefreshToken))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("Failed to revoke refresh token", zap.Error(err))
		return fmt.Errorf("failed to logout: %w", err)
	}

	s.log.Info("User logged out")
	return nil
}

// Authenticate verifies an access token and reloads the user so that bans
// and role changes apply to tokens that are already issued.
func (s *authService) Authenticate(ctx context.Context, token string) (entity.Identity, error) {
	userID, _, err := utils.ParseAccessToken(s.config.JWT.Secret, token)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%v: %w", err, ErrUnauthenticated)
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load user for token", zap.Error(err), zap.String("user_id", userID.String()))
		return entity.Identity{}, fmt.Errorf("failed to authenticate: %w", err)
	}
	if user == nil {
		return entity.Identity{}, fmt.Errorf("user no longer exists: %w", ErrUnauthenticated)
	}
	if user.IsBanned {
		return entity.Identity{}, fmt.Errorf("account is banned: %w", ErrForbidden)
	}

	return entity.Identity{UserID: user.ID, Role: user.Role}, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) issueAccessToken(user *entity.User) (utils.AccessToken, error) {
	ttl := time.Duration(s.config.JWT.AccessTTLMin) * time.Minute
	access, err := utils.GenerateAccessToken(s.config.JWT.Secret, user.ID, string(user.Role), ttl)
	if err != nil {
		s.log.Error("Failed to sign access token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return utils.AccessToken{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return access, nil
}

func (s *authService) issueRefreshToken(ctx context.Context, user *entity.User) (utils.RefreshToken, error) {
	ttl := time.Duration(s.config.JWT.RefreshTTLHours) * time.Hour
	refresh, err := utils.NewRefreshToken(ttl)
	if err != nil {
		s.log.Error("Failed to generate refresh token", zap.Error(err))
		return utils.RefreshToken{}, fmt.Errorf("failed to issue token: %w", err)
	}

	record := &entity.RefreshToken{
		BaseSimple: entity.BaseSimple{
			ID:        newID(),
			CreatedAt: s.now().UTC(),
		},
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		ExpiresAt: refresh.ExpiresAt,
	}
	if err := s.repo.RefreshToken.Create(ctx, record); err != nil {
		s.log.Error("Failed to store refresh token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return utils.RefreshToken{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return refresh, nil
}

