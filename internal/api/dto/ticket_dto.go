package dto

import (
	"time"

	"github.com/resolveit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string   `json:"subject"`
	Description    string   `json:"description"`
	RequesterName  string   `json:"requester_name"`
	RequesterEmail string   `json:"requester_email"`
	RequesterPhone string   `json:"requester_phone"`
	Location       string   `json:"location"`
	PriorityID     string   `json:"priority_id"`
	CategoryIDs    []string `json:"category_ids"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	PriorityID string `json:"priority_id"`
}

// UpdateAssigneeRequest payload. Null assignee_id clears the assignment.
type UpdateAssigneeRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// CreateAttachmentRequest describes attachment metadata input.
type CreateAttachmentRequest struct {
	OriginalName string `json:"original_name"`
	StoredName   string `json:"stored_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// PriorityResponse is the priority reference projection.
type PriorityResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// CategoryResponse is the category reference projection.
type CategoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// TicketResponse is the full ticket projection.
type TicketResponse struct {
	ID             string              `json:"id"`
	TicketCode     string              `json:"ticket_code"`
	Subject        string              `json:"subject"`
	Description    string              `json:"description"`
	RequesterName  string              `json:"requester_name"`
	RequesterEmail string              `json:"requester_email"`
	RequesterPhone string              `json:"requester_phone,omitempty"`
	Location       string              `json:"location,omitempty"`
	Status         domain.TicketStatus `json:"status"`
	Priority       *PriorityResponse   `json:"priority,omitempty"`
	Categories     []CategoryResponse  `json:"categories"`
	AssigneeID     *string             `json:"assignee_id"`
	CreatedBy      string              `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ResolvedAt     *time.Time          `json:"resolved_at"`
	ClosedAt       *time.Time          `json:"closed_at"`
}

// TicketPageResponse is one page of tickets plus the filter-wide total.
type TicketPageResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// CommentResponse is the comment projection.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentResponse is the attachment metadata projection.
type AttachmentResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	UploaderID   string    `json:"uploader_id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// TicketEventResponse is one audit trail entry.
type TicketEventResponse struct {
	ID         string         `json:"id"`
	TicketID   string         `json:"ticket_id"`
	ActorID    *string        `json:"actor_id"`
	ChangeType string         `json:"change_type"`
	OldValue   map[string]any `json:"old_value"`
	NewValue   map[string]any `json:"new_value"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FromTicket maps a domain ticket to its response form.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	response := TicketResponse{
		ID:             ticket.ID,
		TicketCode:     ticket.TicketCode,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		RequesterName:  ticket.RequesterName,
		RequesterEmail: ticket.RequesterEmail,
		RequesterPhone: ticket.RequesterPhone,
		Location:       ticket.Location,
		Status:         ticket.Status,
		Categories:     make([]CategoryResponse, 0, len(ticket.Categories)),
		AssigneeID:     ticket.AssigneeID,
		CreatedBy:      ticket.CreatedBy,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
	}
	if ticket.Priority != nil {
		priority := FromPriority(ticket.Priority)
		response.Priority = &priority
	}
	for i := range ticket.Categories {
		response.Categories = append(response.Categories, FromCategory(&ticket.Categories[i]))
	}
	return response
}

// FromPriority maps a priority reference entry.
func FromPriority(priority *domain.TicketPriority) PriorityResponse {
	return PriorityResponse{
		ID:        priority.ID,
		Name:      priority.Name,
		SortOrder: priority.SortOrder,
		IsActive:  priority.IsActive,
	}
}

// FromCategory maps a category reference entry.
func FromCategory(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		IsActive: category.IsActive,
	}
}

// FromComment maps a comment.
func FromComment(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

// FromAttachment maps attachment metadata.
func FromAttachment(attachment *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           attachment.ID,
		TicketID:     attachment.TicketID,
		UploaderID:   attachment.UploaderID,
		OriginalName: attachment.OriginalName,
		StoredName:   attachment.StoredName,
		MimeType:     attachment.MimeType,
		SizeBytes:    attachment.SizeBytes,
		CreatedAt:    attachment.CreatedAt,
	}
}

// FromTicketEvent maps an audit trail entry.
func FromTicketEvent(event *domain.TicketEvent) TicketEventResponse {
	return TicketEventResponse{
		ID:         event.ID,
		TicketID:   event.TicketID,
		ActorID:    event.ActorID,
		ChangeType: string(event.ChangeType),
		OldValue:   event.OldValue,
		NewValue:   event.NewValue,
		CreatedAt:  event.CreatedAt,
	}
}
