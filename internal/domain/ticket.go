package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// ValidTicketStatus reports whether the value is one of the seven states.
func ValidTicketStatus(status TicketStatus) bool {
	switch status {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusOnHold, TicketStatusResolved, TicketStatusClosed,
		TicketStatusReopened:
		return true
	}
	return false
}

// ActiveStatuses is the policy-defined set of states still requiring work.
var ActiveStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusOnHold,
	TicketStatusReopened,
}

// TicketPriority is an administratively managed reference entry.
type TicketPriority struct {
	ID        string
	Name      string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	TicketCode     string
	Subject        string
	Description    string
	RequesterName  string
	RequesterEmail string
	RequesterPhone string
	Location       string
	Status         TicketStatus
	PriorityID     string
	Priority       *TicketPriority
	Categories     []Category
	AssigneeID     *string
	CreatedBy      string
	UpdatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}
