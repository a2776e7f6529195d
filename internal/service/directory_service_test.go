package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/domain"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

func newDirectoryFixture() (*DirectoryService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := NewDirectoryService(DirectoryDependencies{
		UserRepo:     users,
		CategoryRepo: &fakeCategoryRepo{categories: make(map[string]*domain.Category)},
		PriorityRepo: &fakePriorityRepo{priorities: make(map[string]*domain.TicketPriority)},
	})
	return svc, users
}

func TestUpdateUserRequiresAdmin(t *testing.T) {
	svc, users := newDirectoryFixture()
	target := users.add(domain.User{Email: "t@example.com", Role: domain.RoleCustomer, IsActive: true})

	_, err := svc.UpdateUser(context.Background(), agentUser(), target.ID, UserUpdateInput{})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateUserRoleChange(t *testing.T) {
	svc, users := newDirectoryFixture()
	admin := adminUser()
	target := users.add(domain.User{Email: "t@example.com", Role: domain.RoleCustomer, IsActive: true})

	role := domain.RoleAgent
	updated, err := svc.UpdateUser(context.Background(), admin, target.ID, UserUpdateInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, updated.Role)

	super := domain.RoleSuperAdmin
	_, err = svc.UpdateUser(context.Background(), admin, target.ID, UserUpdateInput{Role: &super})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateUserCannotDeactivateSelf(t *testing.T) {
	svc, users := newDirectoryFixture()
	admin := users.add(domain.User{Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true})

	inactive := false
	_, err := svc.UpdateUser(context.Background(), admin, admin.ID, UserUpdateInput{IsActive: &inactive})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newDirectoryFixture()

	_, err := svc.CreateCategory(context.Background(), adminUser(), "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	category, err := svc.CreateCategory(context.Background(), adminUser(), " Network ")
	require.NoError(t, err)
	assert.Equal(t, "Network", category.Name)
	assert.True(t, category.IsActive)
}

func TestUpdatePriorityReference(t *testing.T) {
	svc, _ := newDirectoryFixture()
	admin := adminUser()

	priority, err := svc.CreatePriority(context.Background(), admin, "Critical", 1)
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdatePriority(context.Background(), admin, priority.ID, nil, nil, &inactive)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Critical", updated.Name)
}
