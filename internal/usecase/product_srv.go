package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/data/cache"
	"marketplace/internal/data/entity"
	"marketplace/internal/data/repository"
	"marketplace/internal/dto/request"
	"marketplace/internal/dto/response"
	"marketplace/internal/event"
	"marketplace/pkg/metrics"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, actor entity.Identity, req *request.CreateProductRequest, image *request.ImageUpload) (*response.ProductResponse, error)
	Update(ctx context.Context, actor entity.Identity, productID string, req *request.UpdateProductRequest, image *request.ImageUpload) (*response.ProductResponse, error)
	Delete(ctx context.Context, actor entity.Identity, productID string) error
	MarkSold(ctx context.Context, actor entity.Identity, productID string) error

	// public
	ListPublic(ctx context.Context) ([]response.ProductResponse, error)
	GetPublic(ctx context.Context, productID string) (*response.ProductResponse, error)
	ListBySeller(ctx context.Context, sellerID string) ([]response.ProductResponse, error)
	ListMine(ctx context.Context, actor entity.Identity) ([]response.ProductResponse, error)

	// moderation
	ListByStatus(ctx context.Context, actor entity.Identity, status string) ([]response.ProductResponse, error)
	ListAll(ctx context.Context, actor entity.Identity) ([]response.ProductResponse, error)
	Approve(ctx context.Context, actor entity.Identity, productID string) (*response.ProductResponse, error)
	Reject(ctx context.Context, actor entity.Identity, productID string) (*response.ProductResponse, error)
	SetStatus(ctx context.Context, actor entity.Identity, productID string, req *request.SetStatusRequest) (*response.ProductResponse, error)
	DeleteRejected(ctx context.Context, actor entity.Identity) (*response.PurgeResponse, error)
}

type productService struct {
	repo   *repository.Repository
	images storage.ImageStore
	cache  cache.ProductCache
	events event.Publisher
	policy utils.PolicyConfig
	upload utils.UploadConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewProductService(
	repo *repository.Repository,
	images storage.ImageStore,
	productCache cache.ProductCache,
	events event.Publisher,
	config *utils.Config,
	log *zap.Logger,
) ProductService {
	return &productService{
		repo:   repo,
		images: images,
		cache:  productCache,
		events: events,
		policy: config.Policy,
		upload: config.Upload,
		log:    log.With(zap.String("service", "product")),
		now:    time.Now,
	}
}

func (s *productService) Create(ctx context.Context, actor entity.Identity, req *request.CreateProductRequest, image *request.ImageUpload) (*response.ProductResponse, error) {
	// 1. Validasi
	if err := validate(req); err != nil {
		s.log.Warn("Create product validation failed", zap.Error(err))
		return nil, err
	}
	if image == nil || image.File == nil {
		return nil, newValidationError("image", "This field is required")
	}

	// 2. Snapshot seller contact
	seller, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to load seller", zap.Error(err), zap.String("seller_id", actor.UserID.String()))
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}
	if seller == nil {
		return nil, fmt.Errorf("seller no longer exists: %w", ErrUnauthenticated)
	}

	// 3. Store image
	ref, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	// 4. Create product, always pending
	now := s.now().UTC()
	contact := seller.Phone
	product := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        newID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           req.Name,
		Price:          req.Price,
		Description:    req.Description,
		Image:          ref,
		SellerID:       actor.UserID,
		SellerContact:  &contact,
		ApprovalStatus: entity.StatusPending,
	}

	if err := s.repo.Product.Create(ctx, product); err != nil {
		s.log.Error("Failed to create product", zap.Error(err), zap.String("seller_id", actor.UserID.String()))
		s.removeImage(ctx, ref)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductLifecycle.WithLabelValues("created").Inc()
	s.log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", product.SellerID.String()))

	resp := response.ProductToResponse(product, sellerInfo(product, seller))
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, actor entity.Identity, productID string, req *request.UpdateProductRequest, image *request.ImageUpload) (*response.ProductResponse, error) {
	// 1. Validasi
	if err := validate(req); err != nil {
		return nil, err
	}
	hasImage := image != nil && image.File != nil
	if req.Empty() && !hasImage {
		return nil, newValidationError("body", "at least one field is required")
	}

	// 2. Load & authorize
	product, err := s.loadForMutation(ctx, actor, productID, nil)
	if err != nil {
		return nil, err
	}

	// 3. Apply changes
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	oldImage := ""
	if hasImage {
		ref, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		oldImage, product.Image = product.Image, ref
	}

	// Seller edits go back to review. Admin edits keep the status.
	from := product.ApprovalStatus
	if s.policy.ResetStatusOnEdit && !actor.IsAdmin() {
		product.ApprovalStatus = entity.StatusPending
	}
	product.UpdatedAt = s.now().UTC()

	if err := s.repo.Product.Update(ctx, product); err != nil {
		if hasImage {
			s.removeImage(ctx, product.Image)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		s.log.Error("Failed to update product", zap.Error(err), zap.String("product_id", product.ID.String()))
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if oldImage != "" {
		s.removeImage(ctx, oldImage)
	}

	if from != product.ApprovalStatus {
		metrics.ModerationTransitions.WithLabelValues(product.ApprovalStatus.String()).Inc()
		s.publish(ctx, event.TypeStatusChanged, product, actor, from)
	}
	s.cache.Invalidate(ctx)

	s.log.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("status", product.ApprovalStatus.String()))

	return s.toResponse(ctx, product, nil), nil
}

// Delete removes a product. Sellers may only delete pending products unless
// the delete policy allows any status; admins may always delete.
func (s *productService) Delete(ctx context.Context, actor entity.Identity, productID string) error {
	var required *entity.ApprovalStatus
	if !actor.IsAdmin() && !s.policy.AllowDeleteAnyStatus {
		pending := entity.StatusPending
		required = &pending
	}
	return s.remove(ctx, actor, productID, required, event.TypeDeleted)
}

// MarkSold removes the listing like Delete, for any status.
func (s *productService) MarkSold(ctx context.Context, actor entity.Identity, productID string) error {
	return s.remove(ctx, actor, productID, nil, event.TypeSold)
}

func (s *productService) ListPublic(ctx context.Context) ([]response.ProductResponse, error) {
	if products, ok := s.cache.GetPublic(ctx); ok {
		return s.toResponses(ctx, products), nil
	}

	approved := entity.StatusApproved
	products, err := s.find(ctx, entity.ProductFilter{Status: &approved})
	if err != nil {
		return nil, err
	}
	s.cache.SetPublic(ctx, products)

	return s.toResponses(ctx, products), nil
}

func (s *productService) GetPublic(ctx context.Context, productID string) (*response.ProductResponse, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ApprovalStatus != entity.StatusApproved {
		return nil, fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	return s.toResponse(ctx, product, nil), nil
}

func (s *productService) ListBySeller(ctx context.Context, sellerID string) ([]response.ProductResponse, error) {
	id, err := parseID("seller_id", sellerID)
	if err != nil {
		return nil, err
	}

	approved := entity.StatusApproved
	products, err := s.find(ctx, entity.ProductFilter{Status: &approved, SellerID: &id})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, products), nil
}

func (s *productService) ListMine(ctx context.Context, actor entity.Identity) ([]response.ProductResponse, error) {
	products, err := s.find(ctx, entity.ProductFilter{SellerID: &actor.UserID})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, products), nil
}

func (s *productService) ListByStatus(ctx context.Context, actor entity.Identity, status string) ([]response.ProductResponse, error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	st, err := entity.ParseApprovalStatus(status)
	if err != nil {
		return nil, newValidationError("approval_status", "must be one of: pending approved rejected")
	}

	products, err := s.find(ctx, entity.ProductFilter{Status: &st})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, products), nil
}

func (s *productService) ListAll(ctx context.Context, actor entity.Identity) ([]response.ProductResponse, error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	products, err := s.find(ctx, entity.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, products), nil
}

func (s *productService) Approve(ctx context.Context, actor entity.Identity, productID string) (*response.ProductResponse, error) {
	return s.transition(ctx, actor, productID, ActionApprove, "")
}

func (s *productService) Reject(ctx context.Context, actor entity.Identity, productID string) (*response.ProductResponse, error) {
	return s.transition(ctx, actor, productID, ActionReject, "")
}

func (s *productService) SetStatus(ctx context.Context, actor entity.Identity, productID string, req *request.SetStatusRequest) (*response.ProductResponse, error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, productID, ActionOverride, entity.ApprovalStatus(req.ApprovalStatus))
}

func (s *productService) DeleteRejected(ctx context.Context, actor entity.Identity) (*response.PurgeResponse, error) {
	if err := RequireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	rejected := entity.StatusRejected
	products, err := s.find(ctx, entity.ProductFilter{Status: &rejected})
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.Product.DeleteByStatus(ctx, entity.StatusRejected)
	if err != nil {
		s.log.Error("Failed to delete rejected products", zap.Error(err))
		return nil, fmt.Errorf("failed to delete rejected products: %w", err)
	}
	if deleted == 0 {
		return nil, fmt.Errorf("no rejected products: %w", ErrNotFound)
	}

	for _, p := range products {
		s.removeImage(ctx, p.Image)
		s.publish(ctx, event.TypeDeleted, p, actor, p.ApprovalStatus)
	}
	metrics.ProductLifecycle.WithLabelValues("purged").Add(float64(deleted))

	s.log.Info("Rejected products purged",
		zap.Int64("deleted", deleted),
		zap.String("admin_id", actor.UserID.String()))

	return &response.PurgeResponse{Deleted: deleted}, nil
}

// ==================== HELPER METHODS ====================

func (s *productService) transition(ctx context.Context, actor entity.Identity, productID string, action Action, target entity.ApprovalStatus) (*response.ProductResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins can moderate products: %w", ErrForbidden)
	}

	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	from := product.ApprovalStatus
	next, changed, err := Transition(from, action, target, actor, s.policy.StrictTransitions)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.toResponse(ctx, product, nil), nil
	}

	updatedAt := s.now().UTC()
	if err := s.repo.Product.UpdateStatus(ctx, product.ID, next, updatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		s.log.Error("Failed to update product status", zap.Error(err), zap.String("product_id", product.ID.String()))
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}
	product.ApprovalStatus = next
	product.UpdatedAt = updatedAt

	metrics.ModerationTransitions.WithLabelValues(next.String()).Inc()
	s.publish(ctx, event.TypeStatusChanged, product, actor, from)
	s.cache.Invalidate(ctx)

	s.log.Info("Product status changed",
		zap.String("product_id", product.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", next.String()),
		zap.String("admin_id", actor.UserID.String()))

	return s.toResponse(ctx, product, nil), nil
}

func (s *productService) remove(ctx context.Context, actor entity.Identity, productID string, required *entity.ApprovalStatus, eventType string) error {
	product, err := s.loadForMutation(ctx, actor, productID, required)
	if err != nil {
		return err
	}

	if err := s.repo.Product.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		s.log.Error("Failed to delete product", zap.Error(err), zap.String("product_id", product.ID.String()))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.removeImage(ctx, product.Image)
	s.publish(ctx, eventType, product, actor, product.ApprovalStatus)
	if product.ApprovalStatus == entity.StatusApproved {
		s.cache.Invalidate(ctx)
	}

	label := "deleted"
	if eventType == event.TypeSold {
		label = "sold"
	}
	metrics.ProductLifecycle.WithLabelValues(label).Inc()

	s.log.Info("Product removed",
		zap.String("product_id", product.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("reason", label))
	return nil
}

func (s *productService) load(ctx context.Context, productID string) (*entity.Product, error) {
	id, err := parseID("id", productID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Product.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find product", zap.Error(err), zap.String("product_id", productID))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return product, nil
}

func (s *productService) loadForMutation(ctx context.Context, actor entity.Identity, productID string, required *entity.ApprovalStatus) (*entity.Product, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(product, actor, required); err != nil {
		s.log.Warn("Product mutation denied",
			zap.Error(err),
			zap.String("product_id", product.ID.String()),
			zap.String("actor_id", actor.UserID.String()))
		return nil, err
	}
	return product, nil
}

func (s *productService) find(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	products, err := s.repo.Product.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) saveImage(ctx context.Context, image *request.ImageUpload) (string, error) {
	if s.upload.MaxBytes > 0 && image.Size > s.upload.MaxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", storage.ErrImageTooLarge, s.upload.MaxBytes)
	}

	contentType, body, err := storage.Sniff(image.Filename, image.File)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return "", newValidationError("image", "must be a jpeg, jpg, png or gif image")
		}
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	ref, err := s.images.Save(ctx, image.Filename, contentType, body)
	if err != nil {
		s.log.Error("Failed to store image", zap.Error(err), zap.String("filename", image.Filename))
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}

func (s *productService) removeImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.log.Warn("Failed to delete image", zap.Error(err), zap.String("image", ref))
	}
}

func (s *productService) publish(ctx context.Context, eventType string, p *entity.Product, actor entity.Identity, from entity.ApprovalStatus) {
	evt := event.ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		ActorID:    actor.UserID,
		FromStatus: from.String(),
		OccurredAt: s.now().UTC(),
	}
	if eventType == event.TypeStatusChanged {
		evt.ToStatus = p.ApprovalStatus.String()
	}
	s.events.Publish(ctx, evt)
}

// toResponses resolves each distinct seller once per call.
func (s *productService) toResponses(ctx context.Context, products []*entity.Product) []response.ProductResponse {
	sellers := make(map[uuid.UUID]*entity.User)
	out := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *s.toResponse(ctx, p, sellers))
	}
	return out
}

func (s *productService) toResponse(ctx context.Context, p *entity.Product, sellers map[uuid.UUID]*entity.User) *response.ProductResponse {
	seller, ok := sellers[p.SellerID]
	if !ok {
		var err error
		seller, err = s.repo.User.FindByID(ctx, p.SellerID)
		if err != nil {
			s.log.Warn("Failed to resolve seller", zap.Error(err), zap.String("seller_id", p.SellerID.String()))
			seller = nil
		}
		if sellers != nil {
			sellers[p.SellerID] = seller
		}
	}

	resp := response.ProductToResponse(p, sellerInfo(p, seller))
	return &resp
}

// sellerInfo prefers the live seller record and falls back to the stored contact.
func sellerInfo(p *entity.Product, seller *entity.User) response.SellerInfo {
	info := response.SellerInfo{ID: p.SellerID.String()}
	if seller != nil {
		info.Username = seller.Username
		info.Phone = seller.Phone
		return info
	}
	if p.SellerContact != nil {
		info.Phone = *p.SellerContact
	}
	return info
}
