package usecase

import (
	"bytes"
	"context"
	"math"
	"testing"

	"marketplace/internal/data/entity"
	"marketplace/internal/dto/request"
	"marketplace/internal/dto/response"
	"marketplace/internal/event"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateSetsSellerAndPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)

	resp, err := f.svc.Product.Create(ctx, identityOf(seller),
		&request.CreateProductRequest{Name: "Chair", Price: 50, Description: "oak"},
		pngUpload("chair.png"))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, resp.ApprovalStatus)
	assert.Equal(t, seller.ID.String(), resp.Seller.ID)
	assert.Equal(t, "alice", resp.Seller.Username)
	assert.Equal(t, "/uploads/chair.png", resp.Image)

	stored, err := f.repo.Product.FindByID(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.SellerContact)
	assert.Equal(t, seller.Phone, *stored.SellerContact)
	assert.Equal(t, seller.ID, stored.SellerID)
}

func TestProductService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)

	_, err := f.svc.Product.Create(ctx, identityOf(seller),
		&request.CreateProductRequest{Name: "Chair", Price: 0}, pngUpload("chair.png"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Product.Create(ctx, identityOf(seller),
		&request.CreateProductRequest{Name: "Chair", Price: 10}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	notAnImage := &request.ImageUpload{Filename: "chair.png", Size: 5, File: bytes.NewReader([]byte("hello"))}
	_, err = f.svc.Product.Create(ctx, identityOf(seller),
		&request.CreateProductRequest{Name: "Chair", Price: 10}, notAnImage)
	assert.ErrorIs(t, err, ErrValidation)

	big := pngUpload("chair.png")
	big.Size = f.config.Upload.MaxBytes + 1
	_, err = f.svc.Product.Create(ctx, identityOf(seller),
		&request.CreateProductRequest{Name: "Chair", Price: 10}, big)
	assert.ErrorIs(t, err, storage.ErrImageTooLarge)

	assert.Empty(t, f.images.saved)
}

func TestProductService_PriceOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	id := f.createProduct(t, seller, "Chair")

	for _, price := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), 1e10, 1e300} {
		_, err := f.svc.Product.Create(ctx, identityOf(seller),
			&request.CreateProductRequest{Name: "Lamp", Price: price}, pngUpload("lamp.png"))
		assert.ErrorIs(t, err, ErrValidation, "create price %v", price)

		p := price
		_, err = f.svc.Product.Update(ctx, identityOf(seller), id,
			&request.UpdateProductRequest{Price: &p}, nil)
		assert.ErrorIs(t, err, ErrValidation, "update price %v", price)
	}

	ceiling := 9999999999.99
	updated, err := f.svc.Product.Update(ctx, identityOf(seller), id,
		&request.UpdateProductRequest{Price: &ceiling}, nil)
	require.NoError(t, err)
	assert.Equal(t, ceiling, updated.Price)
}

func TestProductService_ChairScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)

	id := f.createProduct(t, seller, "Chair")

	public, err := f.svc.Product.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)
	_, err = f.svc.Product.GetPublic(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	approved, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.ApprovalStatus)

	public, err = f.svc.Product.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Chair", public[0].Name)

	got, err := f.svc.Product.GetPublic(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	assert.Contains(t, f.events.types(), event.TypeStatusChanged)
}

func TestProductService_NonAdminCannotModerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	id := f.createProduct(t, seller, "Chair")

	_, err := f.svc.Product.Approve(ctx, identityOf(seller), id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Product.Reject(ctx, identityOf(seller), id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Product.SetStatus(ctx, identityOf(seller), id, &request.SetStatusRequest{ApprovalStatus: "approved"})
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.repo.Product.FindByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.ApprovalStatus)
}

func TestProductService_ApproveMissingProduct(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "root", entity.RoleAdmin)

	_, err := f.svc.Product.Approve(context.Background(), identityOf(admin), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Product.Approve(context.Background(), identityOf(admin), "42")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_IdempotentApprove(t *testing.T) {
	for _, strict := range []bool{false, true} {
		t.Run(map[bool]string{false: "lenient", true: "strict"}[strict], func(t *testing.T) {
			f := newFixture(t, func(c *utils.Config) { c.Policy.StrictTransitions = strict })
			ctx := context.Background()
			seller := f.seedUser(t, "alice", entity.RoleSeller)
			admin := f.seedUser(t, "root", entity.RoleAdmin)
			id := f.createProduct(t, seller, "Chair")

			first, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
			require.NoError(t, err)
			published := len(f.events.types())

			second, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
			if strict {
				assert.ErrorIs(t, err, ErrPreconditionFailed)
			} else {
				require.NoError(t, err)
				assert.Equal(t, entity.StatusApproved, second.ApprovalStatus)
				assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
			}
			assert.Len(t, f.events.types(), published)

			stored, err := f.repo.Product.FindByID(ctx, uuid.MustParse(id))
			require.NoError(t, err)
			assert.Equal(t, entity.StatusApproved, stored.ApprovalStatus)
			assert.True(t, stored.UpdatedAt.Equal(first.UpdatedAt))
		})
	}
}

func TestProductService_SetStatusOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)
	id := f.createProduct(t, seller, "Chair")

	_, err := f.svc.Product.Reject(ctx, identityOf(admin), id)
	require.NoError(t, err)

	resp, err := f.svc.Product.SetStatus(ctx, identityOf(admin), id, &request.SetStatusRequest{ApprovalStatus: "approved"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, resp.ApprovalStatus)

	_, err = f.svc.Product.SetStatus(ctx, identityOf(admin), id, &request.SetStatusRequest{ApprovalStatus: "sold"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_SellerCannotTouchOthersProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sellerA := f.seedUser(t, "alice", entity.RoleSeller)
	sellerB := f.seedUser(t, "bob", entity.RoleSeller)
	id := f.createProduct(t, sellerA, "Chair")

	assert.ErrorIs(t, f.svc.Product.Delete(ctx, identityOf(sellerB), id), ErrForbidden)
	assert.ErrorIs(t, f.svc.Product.MarkSold(ctx, identityOf(sellerB), id), ErrForbidden)
	_, err := f.svc.Product.Update(ctx, identityOf(sellerB), id, &request.UpdateProductRequest{Name: strPtr("Mine")}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.repo.Product.FindByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Chair", stored.Name)
}

func TestProductService_DeletePolicy(t *testing.T) {
	tests := []struct {
		name           string
		allowAnyStatus bool
		wantErr        error
	}{
		{"pending only", false, ErrPreconditionFailed},
		{"any status", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(c *utils.Config) { c.Policy.AllowDeleteAnyStatus = tt.allowAnyStatus })
			ctx := context.Background()
			seller := f.seedUser(t, "alice", entity.RoleSeller)
			admin := f.seedUser(t, "root", entity.RoleAdmin)

			// pending products can always be deleted by their seller
			pendingID := f.createProduct(t, seller, "Lamp")
			require.NoError(t, f.svc.Product.Delete(ctx, identityOf(seller), pendingID))

			approvedID := f.createProduct(t, seller, "Chair")
			_, err := f.svc.Product.Approve(ctx, identityOf(admin), approvedID)
			require.NoError(t, err)

			err = f.svc.Product.Delete(ctx, identityOf(seller), approvedID)
			stored, findErr := f.repo.Product.FindByID(ctx, uuid.MustParse(approvedID))
			require.NoError(t, findErr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotNil(t, stored)
				// admins are not bound by the seller policy
				require.NoError(t, f.svc.Product.Delete(ctx, identityOf(admin), approvedID))
			} else {
				require.NoError(t, err)
				assert.Nil(t, stored)
			}
		})
	}
}

func TestProductService_MarkSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)
	id := f.createProduct(t, seller, "Chair")
	_, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
	require.NoError(t, err)

	require.NoError(t, f.svc.Product.MarkSold(ctx, identityOf(seller), id))

	stored, err := f.repo.Product.FindByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Contains(t, f.events.types(), event.TypeSold)
	assert.Contains(t, f.images.deleted, "/uploads/Chair.png")

	assert.ErrorIs(t, f.svc.Product.MarkSold(ctx, identityOf(seller), id), ErrNotFound)
}

func TestProductService_UpdateResetsStatus(t *testing.T) {
	tests := []struct {
		name       string
		reset      bool
		byAdmin    bool
		wantStatus entity.ApprovalStatus
	}{
		{"seller edit with reset", true, false, entity.StatusPending},
		{"seller edit without reset", false, false, entity.StatusApproved},
		{"admin edit keeps status", true, true, entity.StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(c *utils.Config) { c.Policy.ResetStatusOnEdit = tt.reset })
			ctx := context.Background()
			seller := f.seedUser(t, "alice", entity.RoleSeller)
			admin := f.seedUser(t, "root", entity.RoleAdmin)
			id := f.createProduct(t, seller, "Chair")
			_, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
			require.NoError(t, err)

			actor := identityOf(seller)
			if tt.byAdmin {
				actor = identityOf(admin)
			}
			price := 75.0
			resp, err := f.svc.Product.Update(ctx, actor, id, &request.UpdateProductRequest{Price: &price}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.ApprovalStatus)
			assert.Equal(t, 75.0, resp.Price)
			assert.Equal(t, seller.ID.String(), resp.Seller.ID)
		})
	}
}

func TestProductService_UpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	id := f.createProduct(t, seller, "Chair")

	resp, err := f.svc.Product.Update(ctx, identityOf(seller), id, &request.UpdateProductRequest{}, pngUpload("new.png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/new.png", resp.Image)
	assert.Equal(t, []string{"/uploads/Chair.png"}, f.images.deleted)

	_, err = f.svc.Product.Update(ctx, identityOf(seller), id, &request.UpdateProductRequest{}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_ListingsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)

	for _, name := range []string{"A", "B", "C"} {
		id := f.createProduct(t, seller, name)
		_, err := f.svc.Product.Approve(ctx, identityOf(admin), id)
		require.NoError(t, err)
	}

	names := func(list []response.ProductResponse) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	public, err := f.svc.Product.ListPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(public))

	approved, err := f.svc.Product.ListByStatus(ctx, identityOf(admin), "approved")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(approved))

	mine, err := f.svc.Product.ListMine(ctx, identityOf(seller))
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(mine))

	bySeller, err := f.svc.Product.ListBySeller(ctx, seller.ID.String())
	require.NoError(t, err)
	assert.Len(t, bySeller, 3)

	_, err = f.svc.Product.ListByStatus(ctx, identityOf(admin), "archived")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Product.ListAll(ctx, identityOf(seller))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProductService_DeleteRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)

	_, err := f.svc.Product.DeleteRejected(ctx, identityOf(admin))
	assert.ErrorIs(t, err, ErrNotFound)

	keep := f.createProduct(t, seller, "Keep")
	for _, name := range []string{"X", "Y"} {
		id := f.createProduct(t, seller, name)
		_, err := f.svc.Product.Reject(ctx, identityOf(admin), id)
		require.NoError(t, err)
	}

	result, err := f.svc.Product.DeleteRejected(ctx, identityOf(admin))
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Deleted)

	all, err := f.svc.Product.ListAll(ctx, identityOf(admin))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestProductService_SellerContactFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seedUser(t, "alice", entity.RoleSeller)
	admin := f.seedUser(t, "root", entity.RoleAdmin)
	id := f.createProduct(t, seller, "Chair")

	// seller phone changes are reflected lazily
	seller.Phone = "+62800000"
	require.NoError(t, f.repo.User.Update(ctx, seller))
	all, err := f.svc.Product.ListAll(ctx, identityOf(admin))
	require.NoError(t, err)
	assert.Equal(t, "+62800000", all[0].Seller.Phone)

	// a deleted seller falls back to the stored snapshot
	require.NoError(t, f.repo.User.Delete(ctx, seller.ID))
	got, err := f.svc.Product.ListAll(ctx, identityOf(admin))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "+62811000alice", got[0].Seller.Phone)
	assert.Empty(t, got[0].Seller.Username)
}
