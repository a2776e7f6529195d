package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/api/dto"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	"github.com/resolveit/helpdesk/internal/service"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// DirectoryHandler covers admin user, organization and reference-list
// management.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// ListUsers GET /admin/users.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		value := domain.UserRole(role)
		filter.Role = &value
	}
	if raw := c.Query("is_active"); raw != "" {
		active, parseErr := strconv.ParseBool(raw)
		if parseErr == nil {
			filter.IsActive = &active
		}
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	users, err := h.service.ListUsers(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.FromUser(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /admin/users/:id.
func (h *DirectoryHandler) GetUser(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// UpdateUser PATCH /admin/users/:id.
func (h *DirectoryHandler) UpdateUser(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.service.UpdateUser(c.Context(), actor, c.Params("id"), service.UserUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// CreateOrganization POST /admin/organizations.
func (h *DirectoryHandler) CreateOrganization(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.OrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org, err := h.service.CreateOrganization(c.Context(), actor, &domain.Organization{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromOrganization(org)})
}

// UpdateOrganization PATCH /admin/organizations/:id.
func (h *DirectoryHandler) UpdateOrganization(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.OrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org := &domain.Organization{
		ID:           c.Params("id"),
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		IsActive:     true,
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}
	updated, err := h.service.UpdateOrganization(c.Context(), actor, org)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOrganization(updated)})
}

// ListOrganizations GET /admin/organizations.
func (h *DirectoryHandler) ListOrganizations(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	orgs, err := h.service.ListOrganizations(c.Context(), actor, c.Query("include_inactive") == "true")
	if err != nil {
		return err
	}
	items := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, dto.FromOrganization(&orgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMember POST /admin/organizations/:id/members.
func (h *DirectoryHandler) AddMember(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	member, err := h.service.AddMember(c.Context(), actor, c.Params("id"), req.UserID, req.Primary)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromMember(member)})
}

// RemoveMember DELETE /admin/organizations/:id/members/:userId.
func (h *DirectoryHandler) RemoveMember(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveMember(c.Context(), actor, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "member removed"}})
}

// ListMembers GET /admin/organizations/:id/members.
func (h *DirectoryHandler) ListMembers(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	members, err := h.service.ListMembers(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		items = append(items, dto.FromMember(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetPrimaryMember PUT /admin/organizations/:id/members/:userId/primary.
func (h *DirectoryHandler) SetPrimaryMember(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	if err := h.service.SetPrimaryMembership(c.Context(), actor, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "primary membership updated"}})
}

// ListCategories GET /categories.
func (h *DirectoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.FromCategory(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /admin/categories.
func (h *DirectoryHandler) CreateCategory(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}

	category, err := h.service.CreateCategory(c.Context(), actor, name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// UpdateCategory PATCH /admin/categories/:id.
func (h *DirectoryHandler) UpdateCategory(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	category, err := h.service.UpdateCategory(c.Context(), actor, c.Params("id"), req.Name, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// ListPriorities GET /priorities.
func (h *DirectoryHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.service.ListPriorities(c.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		items = append(items, dto.FromPriority(&priorities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePriority POST /admin/priorities.
func (h *DirectoryHandler) CreatePriority(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	priority, err := h.service.CreatePriority(c.Context(), actor, name, sortOrder)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromPriority(priority)})
}

// UpdatePriority PATCH /admin/priorities/:id.
func (h *DirectoryHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := principalUser(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	priority, err := h.service.UpdatePriority(c.Context(), actor, c.Params("id"), req.Name, req.SortOrder, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPriority(priority)})
}
