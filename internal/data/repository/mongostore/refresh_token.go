package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type refreshTokenDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	TokenHash string     `bson:"token_hash"`
	ExpiresAt time.Time  `bson:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

type refreshTokenRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewRefreshTokenRepository(db *mongo.Database, log *zap.Logger) repository.RefreshTokenRepository {
	return &refreshTokenRepository{
		coll: db.Collection(refreshTokensCollection),
		log:  log.With(zap.String("repository", "refresh_token"), zap.String("store", "mongo")),
	}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	doc := refreshTokenDoc{
		ID:        token.ID.String(),
		UserID:    token.UserID.String(),
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create refresh token: %w", repository.ErrDuplicate)
		}
		r.log.Error("Failed to create refresh token", zap.Error(err))
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenRepository) FindByHash(ctx context.Context, hash string) (*entity.RefreshToken, error) {
	var doc refreshTokenDoc
	err := r.coll.FindOne(ctx, bson.M{"token_hash": hash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find refresh token", zap.Error(err))
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh token id %q: %w", doc.ID, err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh token user id %q: %w", doc.UserID, err)
	}

	return &entity.RefreshToken{
		BaseSimple: entity.BaseSimple{ID: id, CreatedAt: doc.CreatedAt},
		UserID:     userID,
		TokenHash:  doc.TokenHash,
		ExpiresAt:  doc.ExpiresAt,
		RevokedAt:  doc.RevokedAt,
	}, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, hash string) error {
	filter := bson.M{"token_hash": hash, "revoked_at": bson.M{"$exists": false}}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}})
	if err != nil {
		r.log.Error("Failed to revoke refresh token", zap.Error(err))
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("revoke refresh token: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	filter := bson.M{"user_id": userID.String(), "revoked_at": bson.M{"$exists": false}}
	if _, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}}); err != nil {
		r.log.Error("Failed to revoke user refresh tokens", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("revoke refresh tokens of %s: %w", userID, err)
	}
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	res, err := r.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"revoked_at": bson.M{"$exists": true}},
		bson.M{"expires_at": bson.M{"$lt": cutoff}},
	}})
	if err != nil {
		r.log.Error("Failed to clean expired refresh tokens", zap.Error(err))
		return 0, fmt.Errorf("clean refresh tokens: %w", err)
	}
	return res.DeletedCount, nil
}
