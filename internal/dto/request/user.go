package request

import "strings"

// UpdateProfileRequest changes only the fields that are present. Role is not editable here.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,alphanum"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Username != nil {
		v := strings.TrimSpace(*r.Username)
		r.Username = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		r.Phone = &v
	}
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.Email == nil && r.Phone == nil && r.Password == nil
}
