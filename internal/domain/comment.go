package domain

import "time"

// Comment is a message on a ticket thread. Internal comments are hidden
// from the external requester.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
