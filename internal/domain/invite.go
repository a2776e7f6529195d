package domain

import "time"

// InviteStatus tracks the invite token state machine. A token leaves
// PENDING exactly once and never reverts.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusRevoked  InviteStatus = "REVOKED"
	InviteStatusExpired  InviteStatus = "EXPIRED"
)

// Invite is a time-boxed token permitting account creation with a
// pre-assigned role.
type Invite struct {
	ID         string
	Email      string
	Role       UserRole
	Token      string
	Status     InviteStatus
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
