// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"fmt"

	"marketplace/internal/data/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection         = "users"
	productsCollection      = "products"
	refreshTokensCollection = "refresh_tokens"
)

// NewRepository ensures indexes and returns the Mongo-backed stores.
func NewRepository(ctx context.Context, db *mongo.Database, log *zap.Logger) (*repository.Repository, error) {
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	return &repository.Repository{
		User:         NewUserRepository(db, log),
		Product:      NewProductRepository(db, log),
		RefreshToken: NewRefreshTokenRepository(db, log),
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "approval_status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		refreshTokensCollection: {
			{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
