package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// OrganizationRepository manages organizations and memberships.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Organization, error)
	AddMember(ctx context.Context, member *domain.OrganizationMember) error
	RemoveMember(ctx context.Context, organizationID, userID string) error
	ListMembers(ctx context.Context, organizationID string) ([]domain.OrganizationMember, error)
	ListMembershipsForUser(ctx context.Context, userID string) ([]domain.OrganizationMember, error)
	SetPrimary(ctx context.Context, organizationID, userID string) error
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, contact_email, contact_phone, address, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		org.Name,
		org.ContactEmail,
		org.ContactPhone,
		org.Address,
		org.IsActive,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	const query = `
        UPDATE organizations SET name=$1, contact_email=$2, contact_phone=$3, address=$4,
            is_active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		org.Name,
		org.ContactEmail,
		org.ContactPhone,
		org.Address,
		org.IsActive,
		org.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, contact_email, contact_phone, address, is_active, created_at, updated_at
        FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.ContactEmail,
		&org.ContactPhone,
		&org.Address,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context, includeInactive bool) ([]domain.Organization, error) {
	query := `
        SELECT id, name, contact_email, contact_phone, address, is_active, created_at, updated_at
        FROM organizations`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.ContactEmail,
			&org.ContactPhone,
			&org.Address,
			&org.IsActive,
			&org.CreatedAt,
			&org.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	return result, rows.Err()
}

func (r *organizationRepository) AddMember(ctx context.Context, member *domain.OrganizationMember) error {
	const query = `
        INSERT INTO organization_members (organization_id, user_id, is_primary)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		member.OrganizationID,
		member.UserID,
		member.IsPrimary,
	).Scan(&member.ID, &member.CreatedAt)
}

func (r *organizationRepository) RemoveMember(ctx context.Context, organizationID, userID string) error {
	const query = `DELETE FROM organization_members WHERE organization_id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, organizationID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) ListMembers(ctx context.Context, organizationID string) ([]domain.OrganizationMember, error) {
	const query = `
        SELECT id, organization_id, user_id, is_primary, created_at
        FROM organization_members WHERE organization_id=$1`
	return r.listMembers(ctx, query, organizationID)
}

func (r *organizationRepository) ListMembershipsForUser(ctx context.Context, userID string) ([]domain.OrganizationMember, error) {
	const query = `
        SELECT id, organization_id, user_id, is_primary, created_at
        FROM organization_members WHERE user_id=$1`
	return r.listMembers(ctx, query, userID)
}

func (r *organizationRepository) listMembers(ctx context.Context, query string, arg any) ([]domain.OrganizationMember, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrganizationMember
	for rows.Next() {
		var member domain.OrganizationMember
		if err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&member.IsPrimary,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}

// SetPrimary flips the user's primary membership to the given organization
// inside one transaction so the one-primary-per-user invariant holds.
func (r *organizationRepository) SetPrimary(ctx context.Context, organizationID, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE organization_members SET is_primary=FALSE WHERE user_id=$1 AND is_primary`,
		userID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx,
		`UPDATE organization_members SET is_primary=TRUE WHERE organization_id=$1 AND user_id=$2`,
		organizationID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}
