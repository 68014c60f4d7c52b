package models

import "time"

// Role is a platform role.
type Role string

const (
	// RoleSuperOperator administers the whole platform across shops.
	RoleSuperOperator Role = "super_operator"
	// RoleOwner owns one or more shops.
	RoleOwner Role = "owner"
	// RoleStaff works at a single shop.
	RoleStaff Role = "staff"
)

// User is a platform account: super operator, shop owner or shop staff.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ShopID    *int64    `json:"shop_id,omitempty"` // nil only for super operators
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is the user view returned by the API (no password hash).
type UserPublic struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ShopID    *int64    `json:"shop_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic strips credentials from the user.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		ShopID:    u.ShopID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
