package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"marketplace/internal/data/entity"
	"marketplace/internal/usecase"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to the current identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.Identity, error)
}

// Authenticate middleware untuk validasi JWT access token
func Authenticate(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			identity, err := auth.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				switch {
				case errors.Is(err, usecase.ErrForbidden):
					logger.Warn("Banned user rejected", zap.Error(err), zap.String("path", r.URL.Path))
					utils.ResponseForbidden(w, "Account is banned")
				case errors.Is(err, usecase.ErrUnauthenticated):
					logger.Warn("Invalid or expired token", zap.Error(err), zap.String("path", r.URL.Path))
					utils.ResponseUnauthorized(w, "Invalid or expired token")
				default:
					logger.Error("Failed to authenticate request", zap.Error(err))
					utils.ResponseInternalError(w, "Internal server error")
				}
				return
			}

			// Role comes from the store, not from the token claims
			ctx := utils.SetUserContext(r.Context(), identity.UserID, string(identity.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole - middleware cek role, dipasang setelah Authenticate
func RequireRole(role entity.UserRole, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}
			current, _ := utils.GetRoleFromContext(r.Context())

			actor := entity.Identity{UserID: userID, Role: entity.UserRole(current)}
			if err := usecase.RequireRole(actor, role); err != nil {
				logger.Warn("Role check failed",
					zap.String("user_id", userID.String()),
					zap.String("required", string(role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, string(role)+" access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
