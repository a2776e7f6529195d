package domain

import "time"

// PasswordReset is a single-use token permitting credential replacement.
// Used or expired tokens are permanently inert; rows are never deleted.
type PasswordReset struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	IPAddress *string
	CreatedAt time.Time
}
