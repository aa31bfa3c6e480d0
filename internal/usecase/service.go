package usecase

import (
	"marketplace/internal/data/cache"
	"marketplace/internal/data/repository"
	"marketplace/internal/event"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Product ProductService
}

// Dependencies are the optional side channels of the product service.
// Nil Cache and Events fall back to no-op implementations.
type Dependencies struct {
	Images storage.ImageStore
	Cache  cache.ProductCache
	Events event.Publisher
}

func NewService(repo *repository.Repository, deps Dependencies, config *utils.Config, log *zap.Logger) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopProductCache()
	}
	if deps.Events == nil {
		deps.Events = event.NewNoopPublisher()
	}

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		User:    NewUserService(repo, config, log),
		Product: NewProductService(repo, deps.Images, deps.Cache, deps.Events, config, log),
	}
}
