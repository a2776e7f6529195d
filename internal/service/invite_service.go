package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/resolveit/helpdesk/internal/auth"
	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/events"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

// InviteService drives the invite token state machine. Tokens leave
// PENDING exactly once; expiry is detected lazily on read.
type InviteService struct {
	invites    repository.InviteRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	cfg        config.InviteConfig
	now        func() time.Time
}

// InviteDependencies bundles collaborators for the invite service.
type InviteDependencies struct {
	InviteRepo repository.InviteRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Config     config.InviteConfig
}

// InviteCreateInput describes invite creation payload.
type InviteCreateInput struct {
	Email    string
	Role     domain.UserRole
	TTLHours int
}

// InviteAcceptInput carries the material needed to redeem an invite.
// PasswordHash is the already-hashed credential produced upstream.
type InviteAcceptInput struct {
	Token        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// NewInviteService constructs the service.
func NewInviteService(deps InviteDependencies) *InviteService {
	return &InviteService{
		invites:    deps.InviteRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		now:        time.Now,
	}
}

// Create issues a new PENDING invite for the email with a pre-assigned
// role. Fails with a conflict when an account already uses the email.
func (s *InviteService) Create(ctx context.Context, actor *domain.User, input InviteCreateInput) (*domain.Invite, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", map[string]any{"email": input.Email})
	}
	if !domain.ValidRole(input.Role) || input.Role == domain.RoleSuperAdmin {
		return nil, apperrors.NewValidationError("role not invitable", map[string]any{"role": input.Role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("an account already exists for this email", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	token, err := auth.GenerateSecureToken(32)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	invite := &domain.Invite{
		Email:     email,
		Role:      input.Role,
		Token:     token,
		Status:    domain.InviteStatusPending,
		ExpiresAt: s.now().Add(s.ttl(input.TTLHours)),
		CreatedBy: &actor.ID,
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventInviteCreated, invite)
	return invite, nil
}

// Resend re-delivers an existing PENDING invite. The token is not
// rotated; the original link stays valid until its expiry.
func (s *InviteService) Resend(ctx context.Context, actor *domain.User, inviteID string) (*domain.Invite, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	invite, err := s.getFresh(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.Status != domain.InviteStatusPending {
		return nil, apperrors.NewValidationError("only pending invites can be resent", map[string]any{"status": invite.Status})
	}

	s.publish(ctx, actor, events.EventInviteResent, invite)
	return invite, nil
}

// Revoke moves an invite to REVOKED regardless of its current state.
// Revoking an already terminal invite is a no-op beyond the state write.
func (s *InviteService) Revoke(ctx context.Context, actor *domain.User, inviteID string) (*domain.Invite, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	invite, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("invite", map[string]any{"invite_id": inviteID})
		}
		return nil, apperrors.MapError(err)
	}

	if invite.Status != domain.InviteStatusRevoked {
		if err := s.invites.UpdateStatus(ctx, invite.ID, domain.InviteStatusRevoked, nil); err != nil {
			return nil, apperrors.MapError(err)
		}
		invite.Status = domain.InviteStatusRevoked
	}

	s.publish(ctx, actor, events.EventInviteRevoked, invite)
	return invite, nil
}

// Accept redeems an invite token and provisions the account with the
// invite's pre-assigned role.
func (s *InviteService) Accept(ctx context.Context, input InviteAcceptInput) (*domain.User, error) {
	if strings.TrimSpace(input.Token) == "" {
		return nil, apperrors.NewValidationError("token required", nil)
	}
	if input.PasswordHash == "" {
		return nil, apperrors.NewValidationError("credential required", nil)
	}

	invite, err := s.invites.GetByToken(ctx, strings.TrimSpace(input.Token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("invite", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if invite.Status != domain.InviteStatusPending {
		return nil, apperrors.NewValidationError("invite is no longer pending", map[string]any{"status": invite.Status})
	}
	if s.expired(invite) {
		if err := s.markExpired(ctx, invite); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("invite expired", map[string]any{"expired_at": invite.ExpiresAt})
	}

	if _, err := s.users.GetByEmail(ctx, invite.Email); err == nil {
		return nil, apperrors.NewConflict("an account already exists for this email", map[string]any{"email": invite.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        invite.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         invite.Role,
		IsActive:     true,
		CreatedBy:    invite.CreatedBy,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	acceptedAt := s.now()
	if err := s.invites.UpdateStatus(ctx, invite.ID, domain.InviteStatusAccepted, &acceptedAt); err != nil {
		return nil, apperrors.MapError(err)
	}
	invite.Status = domain.InviteStatusAccepted
	invite.AcceptedAt = &acceptedAt

	s.publish(ctx, nil, events.EventInviteAccepted, invite)
	return user, nil
}

// Get returns a single invite, materializing lazy expiry.
func (s *InviteService) Get(ctx context.Context, actor *domain.User, inviteID string) (*domain.Invite, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.getFresh(ctx, inviteID)
}

// List returns invites, optionally filtered by status. Expiry is
// materialized on each PENDING row read past its deadline.
func (s *InviteService) List(ctx context.Context, actor *domain.User, status *domain.InviteStatus, limit, offset int) ([]domain.Invite, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if status != nil {
		switch *status {
		case domain.InviteStatusPending, domain.InviteStatusAccepted, domain.InviteStatusRevoked, domain.InviteStatusExpired:
		default:
			return nil, apperrors.NewValidationError("invalid invite status", map[string]any{"status": *status})
		}
	}
	invites, err := s.invites.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range invites {
		if s.expired(&invites[i]) {
			if err := s.markExpired(ctx, &invites[i]); err != nil {
				return nil, err
			}
		}
	}
	return invites, nil
}

// getFresh fetches by ID and materializes expiry before returning.
func (s *InviteService) getFresh(ctx context.Context, inviteID string) (*domain.Invite, error) {
	invite, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("invite", map[string]any{"invite_id": inviteID})
		}
		return nil, apperrors.MapError(err)
	}
	if s.expired(invite) {
		if err := s.markExpired(ctx, invite); err != nil {
			return nil, err
		}
	}
	return invite, nil
}

func (s *InviteService) expired(invite *domain.Invite) bool {
	return invite.Status == domain.InviteStatusPending && s.now().After(invite.ExpiresAt)
}

func (s *InviteService) markExpired(ctx context.Context, invite *domain.Invite) error {
	if err := s.invites.UpdateStatus(ctx, invite.ID, domain.InviteStatusExpired, nil); err != nil {
		return apperrors.MapError(err)
	}
	invite.Status = domain.InviteStatusExpired
	return nil
}

func (s *InviteService) ttl(requestedHours int) time.Duration {
	hours := requestedHours
	if hours <= 0 {
		hours = s.cfg.DefaultTTLHours
	}
	if s.cfg.MaxTTLHours > 0 && hours > s.cfg.MaxTTLHours {
		hours = s.cfg.MaxTTLHours
	}
	if hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}

func (s *InviteService) publish(ctx context.Context, actor *domain.User, eventType events.EventType, invite *domain.Invite) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: invite.ID,
		Timestamp: s.now(),
		Payload: events.InvitePayload{
			InviteID: invite.ID,
			Email:    invite.Email,
			Role:     invite.Role,
		},
	}
	if actor != nil {
		event.Actor = events.Actor{ActorID: &actor.ID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// requireAdmin is the admin-scoped operation guard shared by services.
func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authenticated user required")
	}
	if !actor.Role.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
