package domain

import "time"

// TicketChangeType captures what changed in an audit entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeCreated  TicketChangeType = "CREATED"
)

// TicketEvent is an append-only audit log entry for a ticket mutation.
type TicketEvent struct {
	ID         string
	TicketID   string
	ActorID    *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
