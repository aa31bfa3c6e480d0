package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s ApprovalStatus) String() string {
	return string(s)
}

// ParseApprovalStatus accepts only the three wire values, case-sensitive.
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	status := ApprovalStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown approval status %q", s)
	}
	return status, nil
}

type Product struct {
	BaseNoDelete
	Name           string         `db:"name"`
	Price          float64        `db:"price"`
	Description    string         `db:"description"`
	Image          string         `db:"image"`
	SellerID       uuid.UUID      `db:"seller_id"`
	SellerContact  *string        `db:"seller_contact"`
	ApprovalStatus ApprovalStatus `db:"approval_status"`
}

// ProductFilter narrows a product listing. Nil fields match everything.
type ProductFilter struct {
	Status   *ApprovalStatus
	SellerID *uuid.UUID
}

func (f ProductFilter) Matches(p *Product) bool {
	if f.Status != nil && p.ApprovalStatus != *f.Status {
		return false
	}
	if f.SellerID != nil && p.SellerID != *f.SellerID {
		return false
	}
	return true
}
