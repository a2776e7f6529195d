package events

import (
	"time"

	"github.com/resolveit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketPriorityChanged  EventType = "ticket_priority_changed"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketCommentAdded     EventType = "ticket_comment_added"
	EventInviteCreated          EventType = "invite_created"
	EventInviteResent           EventType = "invite_resent"
	EventInviteRevoked          EventType = "invite_revoked"
	EventInviteAccepted         EventType = "invite_accepted"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// Actor encapsulates actor metadata for an event. ActorID is nil for
// system-originated events.
type Actor struct {
	ActorID *string         `json:"actor_id,omitempty"`
	Role    domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketCode string `json:"ticket_code"`
	Subject    string `json:"subject"`
	PriorityID string `json:"priority_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriorityID string `json:"old_priority_id"`
	NewPriorityID string `json:"new_priority_id"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string `json:"new_assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// InvitePayload payload for invite lifecycle events.
type InvitePayload struct {
	InviteID string          `json:"invite_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// PasswordResetRequestedPayload payload. The token itself is never placed
// on the event bus; the mailer fetches it through the reset record.
type PasswordResetRequestedPayload struct {
	ResetID string `json:"reset_id"`
	UserID  string `json:"user_id"`
}
