package dto

import (
	"time"

	"github.com/resolveit/helpdesk/internal/domain"
)

// CreateInviteRequest payload. TTLHours zero means the configured default.
type CreateInviteRequest struct {
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
	TTLHours int             `json:"ttl_hours"`
}

// InviteResponse is the invite projection. The raw token is exposed only
// to administrators through this admin-scoped surface.
type InviteResponse struct {
	ID         string              `json:"id"`
	Email      string              `json:"email"`
	Role       string              `json:"role"`
	Token      string              `json:"token"`
	Status     domain.InviteStatus `json:"status"`
	ExpiresAt  time.Time           `json:"expires_at"`
	AcceptedAt *time.Time          `json:"accepted_at"`
	CreatedBy  *string             `json:"created_by"`
	CreatedAt  time.Time           `json:"created_at"`
}

// FromInvite maps a domain invite.
func FromInvite(invite *domain.Invite) InviteResponse {
	return InviteResponse{
		ID:         invite.ID,
		Email:      invite.Email,
		Role:       string(invite.Role),
		Token:      invite.Token,
		Status:     invite.Status,
		ExpiresAt:  invite.ExpiresAt,
		AcceptedAt: invite.AcceptedAt,
		CreatedBy:  invite.CreatedBy,
		CreatedAt:  invite.CreatedAt,
	}
}
