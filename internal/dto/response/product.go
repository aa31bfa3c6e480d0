package response

import (
	"time"

	"marketplace/internal/data/entity"
)

type SellerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type ProductResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Price          float64               `json:"price"`
	Description    string                `json:"description"`
	Image          string                `json:"image"`
	ApprovalStatus entity.ApprovalStatus `json:"approval_status"`
	Seller         SellerInfo            `json:"seller"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// Helper converter. seller is resolved by the caller.
func ProductToResponse(p *entity.Product, seller SellerInfo) ProductResponse {
	return ProductResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		Price:          p.Price,
		Description:    p.Description,
		Image:          p.Image,
		ApprovalStatus: p.ApprovalStatus,
		Seller:         seller,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
