package wire

import (
	"net/http"

	"marketplace/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireAdmin configures admin-only product and user management
func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, authn, admin func(http.Handler) http.Handler) {
	// ==================== ADMIN ROUTES ====================
	r.With(authn, admin).Route("/api/admin/products", func(r chi.Router) {
		r.Get("/", adminHandler.ListProducts)                // GET /api/admin/products
		r.Delete("/rejected", adminHandler.DeleteRejected)   // DELETE /api/admin/products/rejected
		r.Put("/{id}/status", adminHandler.SetProductStatus) // PUT /api/admin/products/{id}/status
	})

	r.With(authn, admin).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", adminHandler.ListUsers) // GET /api/admin/users?page=1&per_page=20
		r.Put("/{id}/grant-admin", adminHandler.GrantAdmin)
		r.Put("/{id}/ban", adminHandler.Ban)
		r.Put("/{id}/unban", adminHandler.Unban)
		r.Delete("/{id}", adminHandler.DeleteUser)
	})
}
