package memory

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"

	"github.com/google/uuid"
)

type productRepository struct {
	t *table[uuid.UUID, entity.Product]
}

func NewProductRepository() repository.ProductRepository {
	return &productRepository{t: newTable[uuid.UUID, entity.Product]()}
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyProduct(p entity.Product) *entity.Product {
	p.SellerContact = clonePtr(p.SellerContact)
	return &p
}

func (r *productRepository) Create(_ context.Context, product *entity.Product) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.rows[product.ID]; ok {
		return fmt.Errorf("create product %s: %w", product.ID, repository.ErrDuplicate)
	}
	r.t.put(product.ID, *copyProduct(*product))
	return nil
}

func (r *productRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	rec, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(rec.value), nil
}

func (r *productRepository) FindAll(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	r.t.mu.RLock()
	matched := r.t.newestFirst(
		func(p entity.Product) time.Time { return p.CreatedAt },
		func(p entity.Product) bool { return filter.Matches(&p) },
	)
	r.t.mu.RUnlock()

	products := make([]*entity.Product, len(matched))
	for i := range matched {
		products[i] = copyProduct(matched[i])
	}
	return products, nil
}

func (r *productRepository) Update(_ context.Context, product *entity.Product) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	rec, ok := r.t.rows[product.ID]
	if !ok {
		return fmt.Errorf("update product %s: %w", product.ID, repository.ErrNotFound)
	}

	stored := rec.value
	stored.Name = product.Name
	stored.Price = product.Price
	stored.Description = product.Description
	stored.Image = product.Image
	stored.ApprovalStatus = product.ApprovalStatus
	stored.UpdatedAt = product.UpdatedAt
	rec.value = stored
	return nil
}

func (r *productRepository) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ApprovalStatus, updatedAt time.Time) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	rec, ok := r.t.rows[id]
	if !ok {
		return fmt.Errorf("update product %s status: %w", id, repository.ErrNotFound)
	}
	rec.value.ApprovalStatus = status
	rec.value.UpdatedAt = updatedAt
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.rows[id]; !ok {
		return fmt.Errorf("delete product %s: %w", id, repository.ErrNotFound)
	}
	delete(r.t.rows, id)
	return nil
}

func (r *productRepository) DeleteByStatus(_ context.Context, status entity.ApprovalStatus) (int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	var n int64
	for id, rec := range r.t.rows {
		if rec.value.ApprovalStatus == status {
			delete(r.t.rows, id)
			n++
		}
	}
	return n, nil
}
