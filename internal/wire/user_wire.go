package wire

import (
	"net/http"

	"marketplace/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures self-service profile routes
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, authn func(http.Handler) http.Handler) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(authn).Route("/api/user/profile", func(r chi.Router) {
		r.Get("/", userHandler.GetProfile)
		r.Put("/", userHandler.UpdateProfile)
		r.Delete("/", userHandler.DeleteProfile)
	})
}
