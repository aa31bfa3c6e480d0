// internal/wire/wire.go
package wire

import (
	"net/http"

	"marketplace/internal/adaptor"
	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"
	"marketplace/internal/usecase"
	"marketplace/pkg/middleware"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, deps usecase.Dependencies, config *utils.Config, logger *zap.Logger) *App {
	// Initialize services dan handlers
	service := usecase.NewService(repo, deps, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	// Setup router
	router := setupRouter(handler, service, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	deps usecase.Dependencies,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics)

	authn := middleware.Authenticate(service.Auth, logger)
	admin := middleware.RequireRole(entity.RoleAdmin, logger)

	// Apply routes
	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, authn)
	wireProduct(r, handler.Product, authn, admin)
	wireAdmin(r, handler.Admin, authn, admin)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Locally stored product images
	if local, ok := deps.Images.(*storage.LocalStore); ok {
		fs := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(local.Dir())))
		r.Get(storage.PublicPrefix+"*", fs.ServeHTTP)
	}

	return r
}
