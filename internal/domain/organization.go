package domain

import "time"

// Organization groups customers under a tenant.
type Organization struct {
	ID           string
	Name         string
	ContactEmail string
	ContactPhone string
	Address      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrganizationMember links a user to an organization.
// A user holds at most one primary membership.
type OrganizationMember struct {
	ID             string
	OrganizationID string
	UserID         string
	IsPrimary      bool
	CreatedAt      time.Time
}
