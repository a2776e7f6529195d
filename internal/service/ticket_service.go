package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/events"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// TicketService owns the ticket lifecycle: status, priority and assignee
// transitions, derived timestamps, and the audit trail.
type TicketService struct {
	tickets     repository.TicketRepository
	priorities  repository.PriorityRepository
	categories  repository.CategoryRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
	auditLog    repository.TicketEventRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	PriorityRepo   repository.PriorityRepository
	CategoryRepo   repository.CategoryRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
	AuditRepo      repository.TicketEventRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject        string
	Description    string
	RequesterName  string
	RequesterEmail string
	RequesterPhone string
	Location       string
	PriorityID     string
	CategoryIDs    []string
}

// TicketPage is one page of tickets plus the unpaginated total.
type TicketPage struct {
	Tickets []domain.Ticket
	Total   int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		priorities:  deps.PriorityRepo,
		categories:  deps.CategoryRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
		auditLog:    deps.AuditRepo,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// CreateTicket creates a ticket on behalf of the acting user.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	priority, err := s.priorities.GetByID(ctx, input.PriorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority_id": input.PriorityID})
		}
		return nil, apperrors.MapError(err)
	}
	if !priority.IsActive {
		return nil, apperrors.NewValidationError("priority inactive", map[string]any{"priority_id": input.PriorityID})
	}
	if err := s.checkCategories(ctx, input.CategoryIDs); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketCode:     generateTicketCode(),
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		RequesterName:  strings.TrimSpace(input.RequesterName),
		RequesterEmail: strings.ToLower(strings.TrimSpace(input.RequesterEmail)),
		RequesterPhone: strings.TrimSpace(input.RequesterPhone),
		Location:       strings.TrimSpace(input.Location),
		Status:         domain.TicketStatusNew,
		PriorityID:     priority.ID,
		Priority:       priority,
		CreatedBy:      actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(input.CategoryIDs) > 0 {
		if err := s.tickets.ReplaceCategories(ctx, ticket.ID, input.CategoryIDs); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.populateCategories(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.recordEvent(ctx, &actor.ID, ticket.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":      ticket.Status,
		"priority_id": ticket.PriorityID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketCode: ticket.TicketCode,
			Subject:    ticket.Subject,
			PriorityID: ticket.PriorityID,
		},
	})
	return ticket, nil
}

// UpdateStatus transitions a ticket to the given status. Agents may only
// act on tickets assigned to them; admins have no ownership restriction.
// Entering RESOLVED or CLOSED stamps the matching derived timestamp on the
// first transition only.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.authorizedTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	now := s.now()
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.populateCategories(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordEvent(ctx, &actor.ID, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventTicketStatusChanged,
		SubjectID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// UpdatePriority reassigns the ticket's priority. Derived timestamps are
// never touched by priority changes.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.User, ticketID, newPriorityID string) (*domain.Ticket, error) {
	priority, err := s.priorities.GetByID(ctx, newPriorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority_id": newPriorityID})
		}
		return nil, apperrors.MapError(err)
	}
	if !priority.IsActive {
		return nil, apperrors.NewValidationError("priority inactive", map[string]any{"priority_id": newPriorityID})
	}
	ticket, err := s.authorizedTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	oldPriorityID := ticket.PriorityID
	ticket.PriorityID = priority.ID
	ticket.Priority = priority
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.populateCategories(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordEvent(ctx, &actor.ID, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority_id": oldPriorityID},
		map[string]any{"priority_id": priority.ID}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventTicketPriorityChanged,
		SubjectID: ticket.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriorityID: oldPriorityID,
			NewPriorityID: priority.ID,
		},
	})
	return ticket, nil
}

// UpdateAssignee reassigns ticket ownership. Admin-scoped: agents cannot
// reassign, not even to themselves.
func (s *TicketService) UpdateAssignee(ctx context.Context, actor *domain.User, ticketID string, newAssigneeID *string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	if !actor.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required for assignment")
	}
	if newAssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *newAssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown assignee", map[string]any{"assignee_id": *newAssigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.IsActive {
			return nil, apperrors.NewValidationError("assignee inactive", map[string]any{"assignee_id": *newAssigneeID})
		}
		if !assignee.Role.IsStaff() {
			return nil, apperrors.NewValidationError("assignee must be an agent or administrator", map[string]any{"assignee_id": *newAssigneeID})
		}
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	oldAssignee := ticket.AssigneeID
	ticket.AssigneeID = newAssigneeID
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.populateCategories(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordEvent(ctx, &actor.ID, ticket.ID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_id": oldAssignee},
		map[string]any{"assignee_id": newAssigneeID}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventTicketAssigned,
		SubjectID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			OldAssigneeID: oldAssignee,
			NewAssigneeID: newAssigneeID,
		},
	})
	return ticket, nil
}

// ListTickets returns a filtered page plus the total count over the same
// filter, computed independently of pagination.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) (*TicketPage, error) {
	if filter.SortField != "" && !repository.ValidSortField(filter.SortField) {
		return nil, apperrors.NewValidationError("unsupported sort field", map[string]any{"sort": string(filter.SortField)})
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range tickets {
		if err := s.populateCategories(ctx, &tickets[i]); err != nil {
			return nil, err
		}
	}
	return &TicketPage{Tickets: tickets, Total: total}, nil
}

// ListTicketsForCustomer scopes the listing to tickets the user created.
func (s *TicketService) ListTicketsForCustomer(ctx context.Context, userID string, filter repository.TicketFilter) (*TicketPage, error) {
	filter.CreatedBy = &userID
	return s.ListTickets(ctx, filter)
}

// GetTicket fetches a ticket; customers may only read their own.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.IsStaff() && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.populateCategories(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// AddComment appends a comment to a ticket. Customers may only comment on
// their own tickets and cannot post internal notes.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.IsStaff() {
		if ticket.CreatedBy != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if isInternal {
			return nil, apperrors.NewForbidden("customers cannot post internal comments")
		}
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    strings.TrimSpace(content),
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventTicketCommentAdded,
		SubjectID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns the ticket thread. Internal comments are hidden
// from customers.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	includeInternal := actor.Role.IsStaff()
	if !includeInternal && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddAttachment records attachment metadata for a ticket.
func (s *TicketService) AddAttachment(ctx context.Context, actor *domain.User, attachment *domain.Attachment) (*domain.Attachment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.tickets.GetByID(ctx, attachment.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": attachment.TicketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.IsStaff() && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	attachment.UploaderID = actor.ID
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// ListAttachments returns non-deleted attachment metadata for a ticket.
func (s *TicketService) ListAttachments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Attachment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.IsStaff() && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

// DeleteAttachment soft-deletes attachment metadata. Only the uploader
// or an administrator may remove it.
func (s *TicketService) DeleteAttachment(ctx context.Context, actor *domain.User, ticketID, attachmentID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authenticated user required")
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	var target *domain.Attachment
	for i := range attachments {
		if attachments[i].ID == attachmentID {
			target = &attachments[i]
			break
		}
	}
	if target == nil {
		return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
	}
	if target.UploaderID != actor.ID && !actor.Role.IsAdmin() {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.attachments.SoftDelete(ctx, attachmentID, actor.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListAuditTrail returns the append-only event log for a ticket.
func (s *TicketService) ListAuditTrail(ctx context.Context, actor *domain.User, ticketID string, limit, offset int) ([]domain.TicketEvent, error) {
	if actor == nil || !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	entries, err := s.auditLog.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// authorizedTicket loads the ticket and applies the mutation ownership
// rule: agents may only mutate tickets currently assigned to them.
func (s *TicketService) authorizedTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleAgent {
		if ticket.AssigneeID == nil || *ticket.AssigneeID != actor.ID {
			return nil, apperrors.NewForbidden("ticket not assigned to you")
		}
	}
	return ticket, nil
}

func (s *TicketService) checkCategories(ctx context.Context, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	found, err := s.categories.GetByIDs(ctx, categoryIDs)
	if err != nil {
		return apperrors.MapError(err)
	}
	known := make(map[string]bool, len(found))
	for _, category := range found {
		known[category.ID] = category.IsActive
	}
	for _, id := range categoryIDs {
		active, ok := known[id]
		if !ok || !active {
			return apperrors.NewValidationError("unknown or inactive category", map[string]any{"category_id": id})
		}
	}
	return nil
}

func (s *TicketService) populateCategories(ctx context.Context, ticket *domain.Ticket) error {
	categories, err := s.tickets.ListCategories(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	ticket.Categories = categories
	return nil
}

func (s *TicketService) recordEvent(ctx context.Context, actorID *string, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if s.auditLog == nil {
		return nil
	}
	return s.auditLog.Create(ctx, &domain.TicketEvent{
		TicketID:   ticketID,
		ActorID:    actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if actor != nil {
		event.Actor = events.Actor{ActorID: &actor.ID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketCode() string {
	return "RIT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
