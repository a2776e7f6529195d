package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// TicketsHandler manages customer-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == "" || req.PriorityID == "" {
		return apperrors.NewValidationError("subject and priority_id required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		RequesterPhone: req.RequesterPhone,
		Location:       req.Location,
		PriorityID:     req.PriorityID,
		CategoryIDs:    req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets lists the caller's own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	page, err := h.service.ListTicketsForCustomer(c.Context(), actor.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketPage(page, filter.Limit, filter.Offset)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.Context(), actor, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromComment(comment)})
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.FromComment(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddAttachment POST /tickets/:id/attachments records attachment
// metadata; the bytes are stored out of band.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OriginalName == "" || req.StoredName == "" {
		return apperrors.NewValidationError("original_name and stored_name required", nil)
	}

	attachment, err := h.service.AddAttachment(c.Context(), actor, &domain.Attachment{
		TicketID:     c.Params("id"),
		OriginalName: req.OriginalName,
		StoredName:   req.StoredName,
		MimeType:     req.MimeType,
		SizeBytes:    req.SizeBytes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromAttachment(attachment)})
}

// ListAttachments GET /tickets/:id/attachments.
func (h *TicketsHandler) ListAttachments(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	attachments, err := h.service.ListAttachments(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, dto.FromAttachment(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteAttachment DELETE /tickets/:id/attachments/:attachmentId.
func (h *TicketsHandler) DeleteAttachment(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAttachment(c.Context(), actor, c.Params("id"), c.Params("attachmentId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketPage(page *service.TicketPage, limit, offset int) dto.TicketPageResponse {
	items := make([]dto.TicketResponse, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, dto.FromTicket(&page.Tickets[i]))
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return dto.TicketPageResponse{
		Tickets: items,
		Total:   page.Total,
		Limit:   limit,
		Offset:  offset,
	}
}
