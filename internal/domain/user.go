package domain

import "time"

// UserRole enumerates platform roles.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleAgent      UserRole = "AGENT"
	RoleCustomer   UserRole = "CUSTOMER"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role acts on tickets beyond its own.
func (r UserRole) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleAgent
}

// IsAdmin reports whether the role carries administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// User is the single identity model for customers, agents and admins.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	IsActive     bool
	LastLoginAt  *time.Time
	LastLoginIP  *string
	CreatedBy    *string
	UpdatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
