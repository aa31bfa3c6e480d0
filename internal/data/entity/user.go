package entity

import "fmt"

type UserRole string

const (
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleSeller || r == RoleAdmin
}

func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown user role %q", s)
	}
	return r, nil
}

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        string   `db:"phone"`
	Role         UserRole `db:"role"`
	IsBanned     bool     `db:"is_banned"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
