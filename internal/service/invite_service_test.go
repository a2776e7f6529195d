package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

type fakeInviteRepo struct {
	invites map[string]*domain.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[string]*domain.Invite)}
}

func (f *fakeInviteRepo) Create(_ context.Context, invite *domain.Invite) error {
	invite.ID = uuid.NewString()
	invite.CreatedAt = time.Now()
	invite.UpdatedAt = invite.CreatedAt
	stored := *invite
	f.invites[invite.ID] = &stored
	return nil
}

func (f *fakeInviteRepo) GetByID(_ context.Context, id string) (*domain.Invite, error) {
	invite, ok := f.invites[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInviteRepo) GetByToken(_ context.Context, token string) (*domain.Invite, error) {
	for _, invite := range f.invites {
		if invite.Token == token {
			copied := *invite
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInviteRepo) List(_ context.Context, status *domain.InviteStatus, _, _ int) ([]domain.Invite, error) {
	var result []domain.Invite
	for _, invite := range f.invites {
		if status != nil && invite.Status != *status {
			continue
		}
		result = append(result, *invite)
	}
	return result, nil
}

func (f *fakeInviteRepo) UpdateStatus(_ context.Context, id string, status domain.InviteStatus, acceptedAt *time.Time) error {
	invite, ok := f.invites[id]
	if !ok {
		return pgx.ErrNoRows
	}
	invite.Status = status
	if acceptedAt != nil {
		invite.AcceptedAt = acceptedAt
	}
	return nil
}

type inviteServiceFixture struct {
	service *InviteService
	invites *fakeInviteRepo
	users   *fakeUserRepo
}

func newInviteServiceFixture() *inviteServiceFixture {
	invites := newFakeInviteRepo()
	users := newFakeUserRepo()
	svc := NewInviteService(InviteDependencies{
		InviteRepo: invites,
		UserRepo:   users,
		Config:     config.InviteConfig{DefaultTTLHours: 72, MaxTTLHours: 336},
	})
	return &inviteServiceFixture{service: svc, invites: invites, users: users}
}

func (f *inviteServiceFixture) addInvite(status domain.InviteStatus, expiresAt time.Time) *domain.Invite {
	invite := &domain.Invite{
		ID:        uuid.NewString(),
		Email:     "newagent@example.com",
		Role:      domain.RoleAgent,
		Token:     uuid.NewString(),
		Status:    status,
		ExpiresAt: expiresAt,
	}
	stored := *invite
	f.invites.invites[invite.ID] = &stored
	return invite
}

func TestCreateInvite(t *testing.T) {
	fixture := newInviteServiceFixture()
	admin := adminUser()

	invite, err := fixture.service.Create(context.Background(), admin, InviteCreateInput{
		Email: "  NewAgent@Example.COM ",
		Role:  domain.RoleAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, "newagent@example.com", invite.Email)
	assert.Equal(t, domain.InviteStatusPending, invite.Status)
	assert.NotEmpty(t, invite.Token)
	assert.True(t, invite.ExpiresAt.After(time.Now().Add(71*time.Hour)))
}

func TestCreateInviteConflictsWithExistingAccount(t *testing.T) {
	fixture := newInviteServiceFixture()
	fixture.users.add(domain.User{Email: "taken@example.com", Role: domain.RoleCustomer, IsActive: true})

	_, err := fixture.service.Create(context.Background(), adminUser(), InviteCreateInput{
		Email: "taken@example.com",
		Role:  domain.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCreateInviteRequiresAdmin(t *testing.T) {
	fixture := newInviteServiceFixture()
	_, err := fixture.service.Create(context.Background(), agentUser(), InviteCreateInput{
		Email: "x@example.com",
		Role:  domain.RoleAgent,
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestCreateInviteClampsTTL(t *testing.T) {
	fixture := newInviteServiceFixture()
	before := time.Now()

	invite, err := fixture.service.Create(context.Background(), adminUser(), InviteCreateInput{
		Email:    "clamped@example.com",
		Role:     domain.RoleAgent,
		TTLHours: 10000,
	})
	require.NoError(t, err)
	assert.True(t, invite.ExpiresAt.Before(before.Add(337*time.Hour)))
}

func TestAcceptInvite(t *testing.T) {
	fixture := newInviteServiceFixture()
	invite := fixture.addInvite(domain.InviteStatusPending, time.Now().Add(time.Hour))

	user, err := fixture.service.Accept(context.Background(), InviteAcceptInput{
		Token:        invite.Token,
		FirstName:    "Jamie",
		LastName:     "Ng",
		PasswordHash: "$2a$12$examplehash",
	})
	require.NoError(t, err)
	assert.Equal(t, invite.Email, user.Email)
	assert.Equal(t, domain.RoleAgent, user.Role)
	assert.True(t, user.IsActive)

	stored, err := fixture.invites.GetByID(context.Background(), invite.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusAccepted, stored.Status)
	assert.NotNil(t, stored.AcceptedAt)
}

func TestAcceptInviteIsSingleUse(t *testing.T) {
	fixture := newInviteServiceFixture()
	invite := fixture.addInvite(domain.InviteStatusPending, time.Now().Add(time.Hour))
	input := InviteAcceptInput{Token: invite.Token, PasswordHash: "$2a$12$examplehash"}

	_, err := fixture.service.Accept(context.Background(), input)
	require.NoError(t, err)

	_, err = fixture.service.Accept(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAcceptExpiredInviteMaterializesState(t *testing.T) {
	fixture := newInviteServiceFixture()
	invite := fixture.addInvite(domain.InviteStatusPending, time.Now().Add(-time.Minute))

	_, err := fixture.service.Accept(context.Background(), InviteAcceptInput{
		Token:        invite.Token,
		PasswordHash: "$2a$12$examplehash",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	stored, err := fixture.invites.GetByID(context.Background(), invite.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusExpired, stored.Status)
}

func TestAcceptUnknownToken(t *testing.T) {
	fixture := newInviteServiceFixture()
	_, err := fixture.service.Accept(context.Background(), InviteAcceptInput{
		Token:        "no-such-token",
		PasswordHash: "$2a$12$examplehash",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestResendOnlyPending(t *testing.T) {
	fixture := newInviteServiceFixture()
	admin := adminUser()

	pending := fixture.addInvite(domain.InviteStatusPending, time.Now().Add(time.Hour))
	resent, err := fixture.service.Resend(context.Background(), admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.Token, resent.Token, "resend must not rotate the token")

	revoked := fixture.addInvite(domain.InviteStatusRevoked, time.Now().Add(time.Hour))
	_, err = fixture.service.Resend(context.Background(), admin, revoked.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestResendExpiredInviteFails(t *testing.T) {
	fixture := newInviteServiceFixture()
	invite := fixture.addInvite(domain.InviteStatusPending, time.Now().Add(-time.Minute))

	_, err := fixture.service.Resend(context.Background(), adminUser(), invite.ID)
	require.Error(t, err)

	stored, getErr := fixture.invites.GetByID(context.Background(), invite.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.InviteStatusExpired, stored.Status)
}

func TestRevokeFromAnyState(t *testing.T) {
	states := []domain.InviteStatus{
		domain.InviteStatusPending,
		domain.InviteStatusAccepted,
		domain.InviteStatusExpired,
		domain.InviteStatusRevoked,
	}
	for _, state := range states {
		t.Run(string(state), func(t *testing.T) {
			fixture := newInviteServiceFixture()
			invite := fixture.addInvite(state, time.Now().Add(time.Hour))

			revoked, err := fixture.service.Revoke(context.Background(), adminUser(), invite.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.InviteStatusRevoked, revoked.Status)
		})
	}
}

func TestListInvitesMaterializesExpiry(t *testing.T) {
	fixture := newInviteServiceFixture()
	fixture.addInvite(domain.InviteStatusPending, time.Now().Add(-time.Minute))
	fixture.addInvite(domain.InviteStatusPending, time.Now().Add(time.Hour))

	invites, err := fixture.service.List(context.Background(), adminUser(), nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, invites, 2)

	statuses := map[domain.InviteStatus]int{}
	for _, invite := range invites {
		statuses[invite.Status]++
	}
	assert.Equal(t, 1, statuses[domain.InviteStatusExpired])
	assert.Equal(t, 1, statuses[domain.InviteStatusPending])
}
