package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/auth"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// principalUser extracts the authenticated user from the request context.
func principalUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal.User, nil
}

// clientIP returns the remote address as a nullable string.
func clientIP(c *fiber.Ctx) *string {
	ip := c.IP()
	if ip == "" {
		return nil
	}
	return &ip
}

// parseTicketQuery builds a ticket filter from query parameters.
func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}

	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority_id"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				filter.PriorityIDs = append(filter.PriorityIDs, trimmed)
			}
		}
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if assigneeID := c.Query("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTimeQuery(c, "created_from"); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTimeQuery(c, "created_to"); to != nil {
		filter.CreatedTo = to
	}
	if from := parseTimeQuery(c, "updated_from"); from != nil {
		filter.UpdatedFrom = from
	}
	if to := parseTimeQuery(c, "updated_to"); to != nil {
		filter.UpdatedTo = to
	}

	if sort := c.Query("sort"); sort != "" {
		filter.SortField = repository.TicketSortField(sort)
	}
	filter.SortDesc = strings.EqualFold(c.Query("order", "desc"), "desc")
	filter.Limit = parseIntQuery(c, "limit", 20)
	filter.Offset = parseIntQuery(c, "offset", 0)
	return filter
}

func parseTimeQuery(c *fiber.Ctx, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
