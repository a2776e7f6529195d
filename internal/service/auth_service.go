package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/resolveit/helpdesk/internal/auth"
	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/events"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// AuthService handles login and the credential-reset token lifecycle.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
	now        func() time.Time
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	ResetRepo  repository.PasswordResetRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Config     config.AuthConfig
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        deps.Config,
		now:        time.Now,
	}
}

// Login verifies credentials and issues an access token. Unknown emails
// and bad passwords return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string, clientIP *string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("account is deactivated")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.users.RecordLogin(ctx, user.ID, s.now(), clientIP); err != nil {
		s.logger.Warn("record login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ForgotPassword starts a credential reset. The response is identical
// whether or not the email matches an account, so the endpoint cannot be
// used to probe for registered addresses. A token is minted only for an
// existing active account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, clientIP *string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := auth.GenerateSecureToken(32)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	reset := &domain.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.resetTTL()),
		IPAddress: clientIP,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPasswordResetRequested,
			SubjectID: reset.ID,
			Timestamp: s.now(),
			Payload: events.PasswordResetRequestedPayload{
				ResetID: reset.ID,
				UserID:  user.ID,
			},
		})
	}
	return nil
}

// ResetPassword redeems a reset token. Unknown, used and expired tokens
// all fail with the same unauthorized error; redemption marks the token
// used and replaces the credential atomically.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewValidationError("token required", nil)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	reset, err := s.resets.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}
	if reset.UsedAt != nil || s.now().After(reset.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.resets.Consume(ctx, reset.ID, user.ID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ChangePassword replaces the credential of an authenticated user after
// verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authenticated user required")
	}
	if err := auth.ComparePassword(actor.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	actor.UpdatedBy = &actor.ID
	if err := s.users.Update(ctx, actor); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// HashPassword exposes credential hashing with the configured cost for
// flows that provision accounts, such as invite acceptance.
func (s *AuthService) HashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

func (s *AuthService) resetTTL() time.Duration {
	minutes := s.cfg.PasswordResetTTLMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	return nil
}
