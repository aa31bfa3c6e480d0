package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// FindAll lists products matching filter, newest first.
	FindAll(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	// Update writes the mutable columns. seller_id is never written.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByStatus(ctx context.Context, status entity.ApprovalStatus) (int64, error)
}

type productRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProductRepository(db database.PgxIface, log *zap.Logger) ProductRepository {
	return &productRepository{
		db:  db,
		log: log.With(zap.String("repository", "product")),
	}
}

const productColumns = `id, name, price, description, image, seller_id, seller_contact, approval_status, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		product entity.Product
		status  string
	)
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.Image,
		&product.SellerID,
		&product.SellerContact,
		&status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// a stored value outside the enum is corruption, not a product state
	if product.ApprovalStatus, err = entity.ParseApprovalStatus(status); err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, price, description, image, seller_id,
		                      seller_contact, approval_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Description,
		product.Image,
		product.SellerID,
		product.SellerContact,
		string(product.ApprovalStatus),
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create product",
			zap.Error(err),
			zap.String("seller_id", product.SellerID.String()),
			zap.String("name", product.Name),
		)
		return fmt.Errorf("create product for seller %s: %w", product.SellerID, err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find product by ID",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return nil, fmt.Errorf("find product by ID %s: %w", id, err)
	}

	return product, nil
}

func (r *productRepository) FindAll(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("approval_status = $%d", len(args)))
	}
	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		conds = append(conds, fmt.Sprintf("seller_id = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list products", zap.Error(err), zap.Strings("filter", conds))
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*entity.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Error("Failed to scan product row", zap.Error(err))
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, description = $4, image = $5,
		    approval_status = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Description,
		product.Image,
		string(product.ApprovalStatus),
		product.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update product",
			zap.Error(err),
			zap.String("product_id", product.ID.String()),
		)
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", product.ID, ErrNotFound)
	}

	return nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, updatedAt time.Time) error {
	query := `UPDATE products SET approval_status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		r.log.Error("Failed to update product status",
			zap.Error(err),
			zap.String("product_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update product %s status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update product %s status: %w", id, ErrNotFound)
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete product",
			zap.Error(err),
			zap.String("product_id", id.String()),
		)
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete product %s: %w", id, ErrNotFound)
	}

	r.log.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (r *productRepository) DeleteByStatus(ctx context.Context, status entity.ApprovalStatus) (int64, error) {
	query := `DELETE FROM products WHERE approval_status = $1`

	result, err := r.db.Exec(ctx, query, string(status))
	if err != nil {
		r.log.Error("Failed to delete products by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("delete %s products: %w", status, err)
	}

	return result.RowsAffected(), nil
}
