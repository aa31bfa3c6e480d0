package usecase

import (
	"testing"

	"marketplace/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeMutation(t *testing.T) {
	owner := entity.Identity{UserID: uuid.New(), Role: entity.RoleSeller}
	other := entity.Identity{UserID: uuid.New(), Role: entity.RoleSeller}
	admin := entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}

	product := &entity.Product{
		BaseNoDelete:   entity.BaseNoDelete{ID: uuid.New()},
		SellerID:       owner.UserID,
		ApprovalStatus: entity.StatusApproved,
	}
	pending := entity.StatusPending
	approved := entity.StatusApproved

	assert.NoError(t, AuthorizeMutation(product, owner, nil))
	assert.NoError(t, AuthorizeMutation(product, owner, &approved))
	assert.ErrorIs(t, AuthorizeMutation(product, owner, &pending), ErrPreconditionFailed)

	assert.ErrorIs(t, AuthorizeMutation(product, other, nil), ErrForbidden)
	// ownership is checked before status
	assert.ErrorIs(t, AuthorizeMutation(product, other, &pending), ErrForbidden)

	assert.NoError(t, AuthorizeMutation(product, admin, nil))
	assert.ErrorIs(t, AuthorizeMutation(product, admin, &pending), ErrPreconditionFailed)
}

func TestRequireRole(t *testing.T) {
	seller := entity.Identity{UserID: uuid.New(), Role: entity.RoleSeller}
	admin := entity.Identity{UserID: uuid.New(), Role: entity.RoleAdmin}

	assert.NoError(t, RequireRole(admin, entity.RoleAdmin))
	assert.NoError(t, RequireRole(seller, entity.RoleSeller))
	assert.ErrorIs(t, RequireRole(seller, entity.RoleAdmin), ErrForbidden)
}
