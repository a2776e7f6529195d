package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// InvitesHandler covers admin invite management.
type InvitesHandler struct {
	service *service.InviteService
}

// NewInvitesHandler constructs handler.
func NewInvitesHandler(inviteService *service.InviteService) *InvitesHandler {
	return &InvitesHandler{service: inviteService}
}

// CreateInvite POST /admin/invites.
func (h *InvitesHandler) CreateInvite(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	invite, err := h.service.Create(c.Context(), actor, service.InviteCreateInput{
		Email:    req.Email,
		Role:     req.Role,
		TTLHours: req.TTLHours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromInvite(invite)})
}

// ListInvites GET /admin/invites.
func (h *InvitesHandler) ListInvites(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var status *domain.InviteStatus
	if raw := c.Query("status"); raw != "" {
		value := domain.InviteStatus(raw)
		status = &value
	}
	invites, err := h.service.List(c.Context(), actor, status,
		parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		items = append(items, dto.FromInvite(&invites[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetInvite GET /admin/invites/:id.
func (h *InvitesHandler) GetInvite(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	invite, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromInvite(invite)})
}

// ResendInvite POST /admin/invites/:id/resend.
func (h *InvitesHandler) ResendInvite(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	invite, err := h.service.Resend(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromInvite(invite)})
}

// RevokeInvite POST /admin/invites/:id/revoke.
func (h *InvitesHandler) RevokeInvite(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	invite, err := h.service.Revoke(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromInvite(invite)})
}
