package dto

import (
	"time"

	"github.com/resolveit/helpdesk/internal/domain"
)

// UpdateUserRequest payload. Nil fields are left unchanged.
type UpdateUserRequest struct {
	FirstName *string          `json:"first_name"`
	LastName  *string          `json:"last_name"`
	Role      *domain.UserRole `json:"role"`
	IsActive  *bool            `json:"is_active"`
}

// OrganizationRequest payload for create and update.
type OrganizationRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	IsActive     *bool  `json:"is_active"`
}

// OrganizationResponse is the organization projection.
type OrganizationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	Address      string    `json:"address"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddMemberRequest payload.
type AddMemberRequest struct {
	UserID  string `json:"user_id"`
	Primary bool   `json:"primary"`
}

// MemberResponse is the membership projection.
type MemberResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	IsPrimary      bool      `json:"is_primary"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryRequest payload for create and update.
type CategoryRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// PriorityRequest payload for create and update.
type PriorityRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

// FromOrganization maps a domain organization.
func FromOrganization(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           org.ID,
		Name:         org.Name,
		ContactEmail: org.ContactEmail,
		ContactPhone: org.ContactPhone,
		Address:      org.Address,
		IsActive:     org.IsActive,
		CreatedAt:    org.CreatedAt,
		UpdatedAt:    org.UpdatedAt,
	}
}

// FromMember maps a domain membership.
func FromMember(member *domain.OrganizationMember) MemberResponse {
	return MemberResponse{
		ID:             member.ID,
		OrganizationID: member.OrganizationID,
		UserID:         member.UserID,
		IsPrimary:      member.IsPrimary,
		CreatedAt:      member.CreatedAt,
	}
}
