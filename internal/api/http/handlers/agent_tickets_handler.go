package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// AgentTicketsHandler manages staff-facing ticket endpoints.
type AgentTicketsHandler struct {
	service *service.TicketService
}

// NewAgentTicketsHandler constructs handler.
func NewAgentTicketsHandler(ticketService *service.TicketService) *AgentTicketsHandler {
	return &AgentTicketsHandler{service: ticketService}
}

// ListTickets GET /agent/tickets lists across all requesters.
func (h *AgentTicketsHandler) ListTickets(c *fiber.Ctx) error {
	if _, err := principalUser(c); err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	if c.Query("mine") == "true" {
		actor, _ := principalUser(c)
		filter.AssigneeID = &actor.ID
	}
	page, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketPage(page, filter.Limit, filter.Offset)})
}

// GetTicket GET /agent/tickets/:id.
func (h *AgentTicketsHandler) GetTicket(c *fiber.Ctx) error {
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

// UpdateStatus PATCH /agent/tickets/:id/status.
func (h *AgentTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdatePriority PATCH /agent/tickets/:id/priority.
func (h *AgentTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PriorityID == "" {
		return apperrors.NewValidationError("priority_id required", nil)
	}

	ticket, err := h.service.UpdatePriority(c.Context(), actor, c.Params("id"), req.PriorityID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AuditTrail GET /agent/tickets/:id/events.
func (h *AgentTicketsHandler) AuditTrail(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListAuditTrail(c.Context(), actor, c.Params("id"),
		parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.TicketEventResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromTicketEvent(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
