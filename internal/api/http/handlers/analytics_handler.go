package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/service"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Dashboard GET /admin/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.Dashboard(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// Users GET /admin/analytics/users.
func (h *AnalyticsHandler) Users(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.Users(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// AgentPerformance GET /admin/analytics/agents.
func (h *AnalyticsHandler) AgentPerformance(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	entries, err := h.service.AgentPerformance(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
