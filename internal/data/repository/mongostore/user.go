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
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type userDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Phone     string    `bson:"phone"`
	Role      string    `bson:"role"`
	IsBanned  bool      `bson:"is_banned"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsBanned:  u.IsBanned,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDoc) toEntity() (*entity.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", d.ID, err)
	}
	role, err := entity.ParseUserRole(d.Role)
	if err != nil {
		return nil, err
	}

	return &entity.User{
		Base:         entity.Base{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Phone:        d.Phone,
		Role:         role,
		IsBanned:     d.IsBanned,
	}, nil
}

type userRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewUserRepository(db *mongo.Database, log *zap.Logger) repository.UserRepository {
	return &userRepository{
		coll: db.Collection(usersCollection),
		log:  log.With(zap.String("repository", "user"), zap.String("store", "mongo")),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.coll.InsertOne(ctx, toUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %s: %w", user.Email, repository.ErrDuplicate)
		}
		r.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity()
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("find all users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count all users: %w", err)
	}
	return n, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	doc := toUserDoc(user)
	set := bson.M{
		"username":   doc.Username,
		"email":      doc.Email,
		"password":   doc.Password,
		"phone":      doc.Phone,
		"role":       doc.Role,
		"is_banned":  doc.IsBanned,
		"updated_at": doc.UpdatedAt,
	}

	res, err := r.coll.UpdateByID(ctx, doc.ID, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user %s: %w", user.ID, repository.ErrDuplicate)
		}
		r.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", doc.ID))
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete user %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
