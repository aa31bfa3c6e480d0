package entity

import "github.com/google/uuid"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
