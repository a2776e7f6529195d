package domain

import "time"

// Attachment stores file metadata for a ticket. The bytes themselves live
// in external storage keyed by StoredName.
type Attachment struct {
	ID           string
	TicketID     string
	UploaderID   string
	OriginalName string
	StoredName   string
	MimeType     string
	SizeBytes    int64
	DeletedAt    *time.Time
	DeletedBy    *string
	CreatedAt    time.Time
}
