package adaptor

import (
	"marketplace/internal/usecase"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Product *ProductHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Product: NewProductHandler(service.Product, config.Upload.MaxBytes, log),
		Admin:   NewAdminHandler(service.User, service.Product, log),
	}
}
