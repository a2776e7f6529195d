package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// PriorityRepository manages the ticket priority reference list.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.TicketPriority) error
	Update(ctx context.Context, priority *domain.TicketPriority) error
	GetByID(ctx context.Context, id string) (*domain.TicketPriority, error)
	List(ctx context.Context, includeInactive bool) ([]domain.TicketPriority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository constructs repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.TicketPriority) error {
	const query = `
        INSERT INTO ticket_priorities (name, sort_order, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		priority.Name,
		priority.SortOrder,
		priority.IsActive,
	).Scan(&priority.ID, &priority.CreatedAt, &priority.UpdatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, priority *domain.TicketPriority) error {
	const query = `
        UPDATE ticket_priorities SET name=$1, sort_order=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		priority.Name,
		priority.SortOrder,
		priority.IsActive,
		priority.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.TicketPriority, error) {
	const query = `
        SELECT id, name, sort_order, is_active, created_at, updated_at
        FROM ticket_priorities WHERE id=$1`
	var priority domain.TicketPriority
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&priority.ID,
		&priority.Name,
		&priority.SortOrder,
		&priority.IsActive,
		&priority.CreatedAt,
		&priority.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context, includeInactive bool) ([]domain.TicketPriority, error) {
	query := `
        SELECT id, name, sort_order, is_active, created_at, updated_at
        FROM ticket_priorities`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketPriority
	for rows.Next() {
		var priority domain.TicketPriority
		if err := rows.Scan(
			&priority.ID,
			&priority.Name,
			&priority.SortOrder,
			&priority.IsActive,
			&priority.CreatedAt,
			&priority.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}
