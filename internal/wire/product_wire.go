package wire

import (
	"net/http"

	"marketplace/internal/adaptor"
	"marketplace/internal/data/entity"

	"github.com/go-chi/chi/v5"
)

func wireProduct(r chi.Router, productHandler *adaptor.ProductHandler, authn, admin func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/products", productHandler.ListPublic)
	r.Get("/api/sellers/{sellerId}/products", productHandler.ListBySeller)

	// ==================== MODERATION ROUTES ====================
	// Static status paths are registered before /{id} so chi matches them first
	r.Group(func(r chi.Router) {
		r.Use(authn) // Must be authenticated
		r.Use(admin) // Must be admin

		r.Get("/api/products/pending", productHandler.ListByStatus(string(entity.StatusPending)))
		r.Get("/api/products/approved", productHandler.ListByStatus(string(entity.StatusApproved)))
		r.Get("/api/products/rejected", productHandler.ListByStatus(string(entity.StatusRejected)))
		r.Put("/api/products/{id}/approve", productHandler.Approve)
		r.Put("/api/products/{id}/reject", productHandler.Reject)
	})

	r.Get("/api/products/{id}", productHandler.GetPublic)

	// ==================== SELLER ROUTES ====================
	// Ownership is checked by the service, admins pass as well
	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/api/products", productHandler.Create)
		r.Put("/api/products/{id}", productHandler.Update)
		r.Delete("/api/products/{id}", productHandler.Delete)
		r.Post("/api/products/{id}/sold", productHandler.MarkSold)
		r.Get("/api/seller/products", productHandler.ListMine)
	})
}
