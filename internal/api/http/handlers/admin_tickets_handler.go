package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// AdminTicketsHandler covers admin-only ticket operations.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// UpdateAssignee PATCH /admin/tickets/:id/assignee.
func (h *AdminTicketsHandler) UpdateAssignee(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAssigneeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateAssignee(c.Context(), actor, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}
