package usecase

import (
	"fmt"

	"marketplace/internal/data/entity"
)

// AuthorizeMutation lets admins and the owning seller through. A non-nil
// required status must also match the product's current status.
func AuthorizeMutation(p *entity.Product, actor entity.Identity, required *entity.ApprovalStatus) error {
	if !actor.IsAdmin() && actor.UserID != p.SellerID {
		return fmt.Errorf("product %s belongs to another seller: %w", p.ID, ErrForbidden)
	}
	if required != nil && p.ApprovalStatus != *required {
		return fmt.Errorf("product is %s, expected %s: %w", p.ApprovalStatus, *required, ErrPreconditionFailed)
	}
	return nil
}

func RequireRole(actor entity.Identity, role entity.UserRole) error {
	if actor.Role == role {
		return nil
	}
	return fmt.Errorf("role %s required: %w", role, ErrForbidden)
}
