package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// DirectoryService covers administrative management of users,
// organizations, memberships and the ticket reference lists. All
// operations are admin-scoped; reference rows are soft-deleted so
// historical tickets keep resolving their labels.
type DirectoryService struct {
	users         repository.UserRepository
	organizations repository.OrganizationRepository
	categories    repository.CategoryRepository
	priorities    repository.PriorityRepository
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	UserRepo         repository.UserRepository
	OrganizationRepo repository.OrganizationRepository
	CategoryRepo     repository.CategoryRepository
	PriorityRepo     repository.PriorityRepository
}

// UserUpdateInput carries mutable user fields. Nil means unchanged.
type UserUpdateInput struct {
	FirstName *string
	LastName  *string
	Role      *domain.UserRole
	IsActive  *bool
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		users:         deps.UserRepo,
		organizations: deps.OrganizationRepo,
		categories:    deps.CategoryRepo,
		priorities:    deps.PriorityRepo,
	}
}

// ListUsers returns users matching the filter.
func (s *DirectoryService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Role != nil && !domain.ValidRole(*filter.Role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *filter.Role})
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches a single user.
func (s *DirectoryService) GetUser(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser applies partial updates to profile, role and active flag.
// Role changes to SUPER_ADMIN require a SUPER_ADMIN actor, and admins
// cannot deactivate themselves.
func (s *DirectoryService) UpdateUser(ctx context.Context, actor *domain.User, userID string, input UserUpdateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Role != nil {
		if !domain.ValidRole(*input.Role) {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		if *input.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
			return nil, apperrors.NewForbidden("only a super administrator can grant that role")
		}
		user.Role = *input.Role
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.IsActive != nil {
		if !*input.IsActive && user.ID == actor.ID {
			return nil, apperrors.NewValidationError("cannot deactivate your own account", nil)
		}
		user.IsActive = *input.IsActive
	}

	user.UpdatedBy = &actor.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateOrganization registers a new tenant organization.
func (s *DirectoryService) CreateOrganization(ctx context.Context, actor *domain.User, org *domain.Organization) (*domain.Organization, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	org.IsActive = true
	if err := s.organizations.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// UpdateOrganization updates tenant details or its active flag.
func (s *DirectoryService) UpdateOrganization(ctx context.Context, actor *domain.User, org *domain.Organization) (*domain.Organization, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if err := s.organizations.Update(ctx, org); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": org.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations lists organizations; inactive ones only for admins
// who ask.
func (s *DirectoryService) ListOrganizations(ctx context.Context, actor *domain.User, includeInactive bool) ([]domain.Organization, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	orgs, err := s.organizations.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orgs, nil
}

// AddMember links a user to an organization, optionally as primary.
func (s *DirectoryService) AddMember(ctx context.Context, actor *domain.User, organizationID, userID string, primary bool) (*domain.OrganizationMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.organizations.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": organizationID})
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	member := &domain.OrganizationMember{
		OrganizationID: organizationID,
		UserID:         userID,
	}
	if err := s.organizations.AddMember(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	if primary {
		if err := s.organizations.SetPrimary(ctx, organizationID, userID); err != nil {
			return nil, apperrors.MapError(err)
		}
		member.IsPrimary = true
	}
	return member, nil
}

// RemoveMember unlinks a user from an organization.
func (s *DirectoryService) RemoveMember(ctx context.Context, actor *domain.User, organizationID, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.organizations.RemoveMember(ctx, organizationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("membership", map[string]any{
				"organization_id": organizationID,
				"user_id":         userID,
			})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListMembers returns an organization's membership roster.
func (s *DirectoryService) ListMembers(ctx context.Context, actor *domain.User, organizationID string) ([]domain.OrganizationMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.organizations.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": organizationID})
		}
		return nil, apperrors.MapError(err)
	}
	members, err := s.organizations.ListMembers(ctx, organizationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// SetPrimaryMembership designates the user's primary organization.
func (s *DirectoryService) SetPrimaryMembership(ctx context.Context, actor *domain.User, organizationID, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.organizations.SetPrimary(ctx, organizationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("membership", map[string]any{
				"organization_id": organizationID,
				"user_id":         userID,
			})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// CreateCategory adds a new ticket category.
func (s *DirectoryService) CreateCategory(ctx context.Context, actor *domain.User, name string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category := &domain.Category{Name: name, IsActive: true}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory renames or soft-deletes a category.
func (s *DirectoryService) UpdateCategory(ctx context.Context, actor *domain.User, categoryID string, name *string, isActive *bool) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": categoryID})
		}
		return nil, apperrors.MapError(err)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		category.Name = trimmed
	}
	if isActive != nil {
		category.IsActive = *isActive
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns categories for pickers and admin screens.
func (s *DirectoryService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// CreatePriority adds a new ticket priority level.
func (s *DirectoryService) CreatePriority(ctx context.Context, actor *domain.User, name string, sortOrder int) (*domain.TicketPriority, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	priority := &domain.TicketPriority{Name: name, SortOrder: sortOrder, IsActive: true}
	if err := s.priorities.Create(ctx, priority); err != nil {
		return nil, apperrors.MapError(err)
	}
	return priority, nil
}

// UpdatePriority renames, reorders or soft-deletes a priority level.
func (s *DirectoryService) UpdatePriority(ctx context.Context, actor *domain.User, priorityID string, name *string, sortOrder *int, isActive *bool) (*domain.TicketPriority, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	priority, err := s.priorities.GetByID(ctx, priorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("priority", map[string]any{"priority_id": priorityID})
		}
		return nil, apperrors.MapError(err)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		priority.Name = trimmed
	}
	if sortOrder != nil {
		priority.SortOrder = *sortOrder
	}
	if isActive != nil {
		priority.IsActive = *isActive
	}
	if err := s.priorities.Update(ctx, priority); err != nil {
		return nil, apperrors.MapError(err)
	}
	return priority, nil
}

// ListPriorities returns priority levels for pickers and admin screens.
func (s *DirectoryService) ListPriorities(ctx context.Context, includeInactive bool) ([]domain.TicketPriority, error) {
	priorities, err := s.priorities.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return priorities, nil
}
