package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/data/entity"
	"marketplace/internal/usecase"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps usecase errors to the response envelope. Unknown
// errors are logged and hidden behind INTERNAL_FAILURE.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Validation failed", validationErr.Fields)

	case errors.Is(err, storage.ErrImageTooLarge):
		log.Warn(operation+" failed - image too large", zap.Error(err))
		utils.ResponseTooLarge(w, "Image is too large")

	case errors.Is(err, usecase.ErrUnauthenticated):
		log.Warn(operation+" failed - unauthenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "You are not allowed to perform this action")

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Resource not found")

	case errors.Is(err, usecase.ErrDuplicateCredential):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodeDuplicateCredential, "Email or username already registered", nil)

	case errors.Is(err, usecase.ErrInvalidCredential):
		log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodeInvalidCredential, "Invalid credentials", nil)

	case errors.Is(err, usecase.ErrPreconditionFailed):
		log.Warn(operation+" failed - precondition", zap.Error(err))
		utils.ResponseBadRequest(w, utils.CodePreconditionFailed, err.Error(), nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// identity reads the caller set by the auth middleware.
func identity(r *http.Request) (entity.Identity, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return entity.Identity{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return entity.Identity{UserID: userID, Role: entity.UserRole(role)}, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, utils.CodeValidationFailed, "Invalid request body", nil)
		return false
	}
	return true
}
