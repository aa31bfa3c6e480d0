package repository

import (
	"marketplace/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Product      ProductRepository
	RefreshToken RefreshTokenRepository
}

// NewRepository builds the Postgres-backed stores.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Product:      NewProductRepository(db, log),
		RefreshToken: NewRefreshTokenRepository(db, log),
	}
}
