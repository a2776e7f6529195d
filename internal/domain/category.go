package domain

import "time"

// Category labels tickets; soft-deleted via IsActive.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
