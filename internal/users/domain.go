package users

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrDuplicate   = errors.New("user already exists")
	ErrInvalidRole = errors.New("invalid user role")
)

type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleManager          Role = "MANAGER"
	RoleCashier          Role = "CASHIER"
	RoleInventoryClerk   Role = "INVENTORY_CLERK"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleAuditor          Role = "AUDITOR"
	RoleSupportStaff     Role = "SUPPORT_STAFF"
	RoleMarketingManager Role = "MARKETING_MANAGER"
	RoleSupplier         Role = "SUPPLIER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleInventoryClerk, RoleAccountant,
		RoleAuditor, RoleSupportStaff, RoleMarketingManager, RoleSupplier:
		return true
	}
	return false
}

// User represents a back-office account. PasswordHash never crosses the API
// boundary.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Username     *string   `json:"username,omitempty"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserInput struct {
	FullName string
	Username *string
	Email    string
	Password string
	Role     Role
}

type UpdateUserInput struct {
	FullName *string
	Username *string
	Email    *string
	Password *string
	Role     *Role
	IsActive *bool
}

type ListUsersFilter struct {
	Role  *Role
	Limit int
}
