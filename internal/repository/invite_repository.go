package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// InviteRepository manages invite token persistence. Rows are never
// deleted; terminal states are recorded for audit.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetByID(ctx context.Context, id string) (*domain.Invite, error)
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)
	List(ctx context.Context, status *domain.InviteStatus, limit, offset int) ([]domain.Invite, error)
	UpdateStatus(ctx context.Context, id string, status domain.InviteStatus, acceptedAt *time.Time) error
}

type inviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository constructs repository.
func NewInviteRepository(pool *pgxpool.Pool) InviteRepository {
	return &inviteRepository{pool: pool}
}

const inviteColumns = `id, email, role, token, status, expires_at, accepted_at, created_by, created_at, updated_at`

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	const query = `
        INSERT INTO invites (email, role, token, status, expires_at, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		invite.Email,
		invite.Role,
		invite.Token,
		invite.Status,
		invite.ExpiresAt,
		invite.CreatedBy,
	).Scan(&invite.ID, &invite.CreatedAt, &invite.UpdatedAt)
}

func (r *inviteRepository) GetByID(ctx context.Context, id string) (*domain.Invite, error) {
	return r.fetchSingle(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id=$1`, id)
}

func (r *inviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	return r.fetchSingle(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token=$1`, token)
}

func (r *inviteRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Invite, error) {
	var invite domain.Invite
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&invite.ID,
		&invite.Email,
		&invite.Role,
		&invite.Token,
		&invite.Status,
		&invite.ExpiresAt,
		&invite.AcceptedAt,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&invite.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) List(ctx context.Context, status *domain.InviteStatus, limit, offset int) ([]domain.Invite, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + inviteColumns + ` FROM invites`
	args := []any{}
	if status != nil {
		args = append(args, *status)
		query += ` WHERE status=$1`
	}
	query += ` ORDER BY created_at DESC LIMIT ` + itoa(limit) + ` OFFSET ` + itoa(offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Invite
	for rows.Next() {
		var invite domain.Invite
		if err := rows.Scan(
			&invite.ID,
			&invite.Email,
			&invite.Role,
			&invite.Token,
			&invite.Status,
			&invite.ExpiresAt,
			&invite.AcceptedAt,
			&invite.CreatedBy,
			&invite.CreatedAt,
			&invite.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, invite)
	}
	return result, rows.Err()
}

func (r *inviteRepository) UpdateStatus(ctx context.Context, id string, status domain.InviteStatus, acceptedAt *time.Time) error {
	const query = `
        UPDATE invites SET status=$1, accepted_at=COALESCE($2, accepted_at), updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, acceptedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
