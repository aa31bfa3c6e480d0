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

type productDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Price          float64   `bson:"price"`
	Description    string    `bson:"description"`
	Image          string    `bson:"image"`
	SellerID       string    `bson:"seller_id"`
	SellerContact  *string   `bson:"seller_contact,omitempty"`
	ApprovalStatus string    `bson:"approval_status"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ID:             p.ID.String(),
		Name:           p.Name,
		Price:          p.Price,
		Description:    p.Description,
		Image:          p.Image,
		SellerID:       p.SellerID.String(),
		SellerContact:  p.SellerContact,
		ApprovalStatus: string(p.ApprovalStatus),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (d productDoc) toEntity() (*entity.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("product id %q: %w", d.ID, err)
	}
	sellerID, err := uuid.Parse(d.SellerID)
	if err != nil {
		return nil, fmt.Errorf("product %s seller id %q: %w", d.ID, d.SellerID, err)
	}
	status, err := entity.ParseApprovalStatus(d.ApprovalStatus)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", d.ID, err)
	}

	return &entity.Product{
		BaseNoDelete:   entity.BaseNoDelete{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Name:           d.Name,
		Price:          d.Price,
		Description:    d.Description,
		Image:          d.Image,
		SellerID:       sellerID,
		SellerContact:  d.SellerContact,
		ApprovalStatus: status,
	}, nil
}

type productRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewProductRepository(db *mongo.Database, log *zap.Logger) repository.ProductRepository {
	return &productRepository{
		coll: db.Collection(productsCollection),
		log:  log.With(zap.String("repository", "product"), zap.String("store", "mongo")),
	}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if _, err := r.coll.InsertOne(ctx, toProductDoc(product)); err != nil {
		r.log.Error("Failed to create product", zap.Error(err), zap.String("seller_id", product.SellerID.String()))
		return fmt.Errorf("create product for seller %s: %w", product.SellerID, err)
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find product by ID", zap.Error(err), zap.String("product_id", id.String()))
		return nil, fmt.Errorf("find product by ID %s: %w", id, err)
	}
	return doc.toEntity()
}

func productFilter(f entity.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Status != nil {
		filter["approval_status"] = string(*f.Status)
	}
	if f.SellerID != nil {
		filter["seller_id"] = f.SellerID.String()
	}
	return filter
}

func (r *productRepository) FindAll(ctx context.Context, f entity.ProductFilter) ([]*entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.coll.Find(ctx, productFilter(f), opts)
	if err != nil {
		r.log.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toEntity()
		if err != nil {
			r.log.Error("Invalid product document", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	set := bson.M{
		"name":            product.Name,
		"price":           product.Price,
		"description":     product.Description,
		"image":           product.Image,
		"approval_status": string(product.ApprovalStatus),
		"updated_at":      product.UpdatedAt,
	}

	res, err := r.coll.UpdateByID(ctx, product.ID.String(), bson.M{"$set": set})
	if err != nil {
		r.log.Error("Failed to update product", zap.Error(err), zap.String("product_id", product.ID.String()))
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update product %s: %w", product.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, updatedAt time.Time) error {
	update := bson.M{"$set": bson.M{"approval_status": string(status), "updated_at": updatedAt}}

	res, err := r.coll.UpdateByID(ctx, id.String(), update)
	if err != nil {
		r.log.Error("Failed to update product status", zap.Error(err), zap.String("product_id", id.String()))
		return fmt.Errorf("update product %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update product %s status: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.log.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete product %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *productRepository) DeleteByStatus(ctx context.Context, status entity.ApprovalStatus) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"approval_status": string(status)})
	if err != nil {
		r.log.Error("Failed to delete products by status", zap.Error(err), zap.String("status", string(status)))
		return 0, fmt.Errorf("delete %s products: %w", status, err)
	}
	return res.DeletedCount, nil
}
