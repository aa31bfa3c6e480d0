package request

import "io"

// Price bounds match the NUMERIC(12,2) column.
type CreateProductRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=200"`
	Price       float64 `json:"price" form:"price" validate:"gt=0,lte=9999999999.99"`
	Description string  `json:"description" form:"description" validate:"max=5000"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" form:"name" validate:"omitempty,min=1,max=200"`
	Price       *float64 `json:"price,omitempty" form:"price" validate:"omitempty,gt=0,lte=9999999999.99"`
	Description *string  `json:"description,omitempty" form:"description" validate:"omitempty,max=5000"`
}

func (r UpdateProductRequest) Empty() bool {
	return r.Name == nil && r.Price == nil && r.Description == nil
}

type SetStatusRequest struct {
	ApprovalStatus string `json:"approval_status" validate:"required,oneof=pending approved rejected"`
}

// ImageUpload is a product image taken from a multipart form.
type ImageUpload struct {
	Filename string
	Size     int64
	File     io.Reader
}
