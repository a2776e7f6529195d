package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/auth"
	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

type fakeResetRepo struct {
	resets map[string]*domain.PasswordReset
	users  *fakeUserRepo
}

func newFakeResetRepo(users *fakeUserRepo) *fakeResetRepo {
	return &fakeResetRepo{resets: make(map[string]*domain.PasswordReset), users: users}
}

func (f *fakeResetRepo) Create(_ context.Context, reset *domain.PasswordReset) error {
	reset.ID = uuid.NewString()
	reset.CreatedAt = time.Now()
	stored := *reset
	f.resets[reset.ID] = &stored
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	for _, reset := range f.resets {
		if reset.Token == token {
			copied := *reset
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResetRepo) Consume(_ context.Context, resetID, userID, newPasswordHash string) error {
	reset, ok := f.resets[resetID]
	if !ok || reset.UsedAt != nil {
		return pgx.ErrNoRows
	}
	user, ok := f.users.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	reset.UsedAt = &now
	user.PasswordHash = newPasswordHash
	return nil
}

type authServiceFixture struct {
	service *AuthService
	users   *fakeUserRepo
	resets  *fakeResetRepo
}

func newAuthServiceFixture() *authServiceFixture {
	users := newFakeUserRepo()
	resets := newFakeResetRepo(users)
	svc := NewAuthService(AuthDependencies{
		UserRepo:  users,
		ResetRepo: resets,
		Tokens:    auth.NewTokenManager("test-secret", 60),
		Config:    config.AuthConfig{BcryptCost: 4, PasswordResetTTLMinutes: 60},
	})
	return &authServiceFixture{service: svc, users: users, resets: resets}
}

func (f *authServiceFixture) addUser(email, password string, active bool) *domain.User {
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		panic(err)
	}
	return f.users.add(domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		IsActive:     active,
	})
}

func TestLogin(t *testing.T) {
	fixture := newAuthServiceFixture()
	fixture.addUser("user@example.com", "correct-horse", true)

	result, err := fixture.service.Login(context.Background(), "User@Example.com", "correct-horse", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user@example.com", result.User.Email)
}

func TestLoginFailures(t *testing.T) {
	fixture := newAuthServiceFixture()
	fixture.addUser("user@example.com", "correct-horse", true)
	fixture.addUser("frozen@example.com", "correct-horse", false)

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"unknown email", "ghost@example.com", "correct-horse", "UNAUTHORIZED"},
		{"wrong password", "user@example.com", "battery-staple", "UNAUTHORIZED"},
		{"inactive account", "frozen@example.com", "correct-horse", "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.service.Login(context.Background(), tt.email, tt.password, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.ToDomainError(err).Code)
		})
	}
}

func TestLoginRecordsLastLogin(t *testing.T) {
	fixture := newAuthServiceFixture()
	user := fixture.addUser("user@example.com", "correct-horse", true)
	ip := "203.0.113.9"

	_, err := fixture.service.Login(context.Background(), user.Email, "correct-horse", &ip)
	require.NoError(t, err)

	stored := fixture.users.users[user.ID]
	require.NotNil(t, stored.LastLoginAt)
	require.NotNil(t, stored.LastLoginIP)
	assert.Equal(t, ip, *stored.LastLoginIP)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	fixture := newAuthServiceFixture()
	fixture.addUser("known@example.com", "correct-horse", true)
	fixture.addUser("frozen@example.com", "correct-horse", false)

	require.NoError(t, fixture.service.ForgotPassword(context.Background(), "known@example.com", nil))
	require.NoError(t, fixture.service.ForgotPassword(context.Background(), "ghost@example.com", nil))
	require.NoError(t, fixture.service.ForgotPassword(context.Background(), "frozen@example.com", nil))

	// Only the active account gets a token minted.
	assert.Len(t, fixture.resets.resets, 1)
}

func TestResetPassword(t *testing.T) {
	fixture := newAuthServiceFixture()
	user := fixture.addUser("user@example.com", "old-password", true)
	require.NoError(t, fixture.service.ForgotPassword(context.Background(), user.Email, nil))

	var token string
	for _, reset := range fixture.resets.resets {
		token = reset.Token
	}

	require.NoError(t, fixture.service.ResetPassword(context.Background(), token, "new-password-1"))

	// Old credential no longer works, new one does.
	_, err := fixture.service.Login(context.Background(), user.Email, "old-password", nil)
	require.Error(t, err)
	_, err = fixture.service.Login(context.Background(), user.Email, "new-password-1", nil)
	require.NoError(t, err)
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	fixture := newAuthServiceFixture()
	user := fixture.addUser("user@example.com", "old-password", true)
	require.NoError(t, fixture.service.ForgotPassword(context.Background(), user.Email, nil))

	var token string
	for _, reset := range fixture.resets.resets {
		token = reset.Token
	}

	require.NoError(t, fixture.service.ResetPassword(context.Background(), token, "new-password-1"))

	err := fixture.service.ResetPassword(context.Background(), token, "new-password-2")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestResetPasswordRejections(t *testing.T) {
	fixture := newAuthServiceFixture()
	user := fixture.addUser("user@example.com", "old-password", true)
	require.NoError(t, fixture.service.ForgotPassword(context.Background(), user.Email, nil))

	var reset *domain.PasswordReset
	for _, stored := range fixture.resets.resets {
		reset = stored
	}

	t.Run("unknown token", func(t *testing.T) {
		err := fixture.service.ResetPassword(context.Background(), "bogus", "new-password-1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		reset.ExpiresAt = time.Now().Add(-time.Minute)
		err := fixture.service.ResetPassword(context.Background(), reset.Token, "new-password-1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		reset.ExpiresAt = time.Now().Add(time.Hour)
		fixture.users.users[user.ID].IsActive = false
		err := fixture.service.ResetPassword(context.Background(), reset.Token, "new-password-1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	})

	t.Run("weak password", func(t *testing.T) {
		err := fixture.service.ResetPassword(context.Background(), reset.Token, "short")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})
}

func TestChangePassword(t *testing.T) {
	fixture := newAuthServiceFixture()
	user := fixture.addUser("user@example.com", "old-password", true)
	actor, err := fixture.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	err = fixture.service.ChangePassword(context.Background(), actor, "wrong", "new-password-1")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	require.NoError(t, fixture.service.ChangePassword(context.Background(), actor, "old-password", "new-password-1"))
	_, err = fixture.service.Login(context.Background(), user.Email, "new-password-1", nil)
	require.NoError(t, err)
}
