package request

import "strings"

// RegisterRequest has no role field: every registration creates a seller.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Normalize trims whitespace and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

// LoginRequest accepts the identifier as "email" or "username".
type LoginRequest struct {
	Email    string `json:"email" validate:"required_without=Username"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Identifier() string {
	if id := strings.TrimSpace(r.Email); id != "" {
		return id
	}
	return strings.TrimSpace(r.Username)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
