package adaptor

import (
	"context"
	"net/http"

	"marketplace/internal/data/entity"
	"marketplace/internal/dto/request"
	"marketplace/internal/dto/response"
	"marketplace/internal/usecase"
	"marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the /api/admin routes.
type AdminHandler struct {
	users    usecase.UserService
	products usecase.ProductService
	log      *zap.Logger
}

func NewAdminHandler(users usecase.UserService, products usecase.ProductService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		users:    users,
		products: products,
		log:      log.With(zap.String("handler", "admin")),
	}
}

// ListProducts handles GET /api/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	products, err := h.products.ListAll(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "list all products")
		return
	}

	utils.ResponseSuccess(w, "Products retrieved successfully", products)
}

// SetProductStatus handles PUT /api/admin/products/{id}/status
func (h *AdminHandler) SetProductStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.SetStatus(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "set product status")
		return
	}

	utils.ResponseSuccess(w, "Product status updated", product)
}

// DeleteRejected handles DELETE /api/admin/products/rejected
func (h *AdminHandler) DeleteRejected(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.products.DeleteRejected(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "delete rejected products")
		return
	}

	utils.ResponseSuccess(w, "Rejected products deleted", result)
}

// ListUsers handles GET /api/admin/users?page=&per_page=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := request.NewPaginatedRequest(
		utils.ParseInt(query.Get("page"), 1),
		utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage),
	)

	users, err := h.users.ListUsers(r.Context(), actor, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// GrantAdmin handles PUT /api/admin/users/{id}/grant-admin
func (h *AdminHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, "grant admin", "Admin role granted", h.users.GrantAdmin)
}

// Ban handles PUT /api/admin/users/{id}/ban
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, "ban user", "User banned", h.users.Ban)
}

// Unban handles PUT /api/admin/users/{id}/unban
func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, "unban user", "User unbanned", h.users.Unban)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.users.DeleteUser(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request, operation, message string,
	fn func(ctx context.Context, actor entity.Identity, userID string) (*response.UserResponse, error)) {
	actor, ok := identity(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	user, err := fn(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, user)
}
