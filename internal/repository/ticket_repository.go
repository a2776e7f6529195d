package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// TicketSortField names a whitelisted sort column.
type TicketSortField string

const (
	SortByTicketCode   TicketSortField = "ticket_code"
	SortBySubject      TicketSortField = "subject"
	SortByStatus       TicketSortField = "status"
	SortByPriorityName TicketSortField = "priority.name"
	SortByCreatedAt    TicketSortField = "created_at"
	SortByUpdatedAt    TicketSortField = "updated_at"
)

var sortColumns = map[TicketSortField]string{
	SortByTicketCode:   "t.ticket_code",
	SortBySubject:      "t.subject",
	SortByStatus:       "t.status",
	SortByPriorityName: "p.name",
	SortByCreatedAt:    "t.created_at",
	SortByUpdatedAt:    "t.updated_at",
}

// ValidSortField reports whether the field is in the sort whitelist.
func ValidSortField(field TicketSortField) bool {
	_, ok := sortColumns[field]
	return ok
}

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	CreatedBy   *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	PriorityIDs []string
	CategoryID  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
	SortField   TicketSortField
	SortDesc    bool
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error)
	ReplaceCategories(ctx context.Context, ticketID string, categoryIDs []string) error
	ListCategories(ctx context.Context, ticketID string) ([]domain.Category, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.ticket_code, t.subject, t.description,
       t.requester_name, t.requester_email, t.requester_phone, t.location,
       t.status, t.priority_id, t.assignee_id, t.created_by, t.updated_by,
       t.created_at, t.updated_at, t.resolved_at, t.closed_at,
       p.id, p.name, p.sort_order, p.is_active`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_code, subject, description, requester_name, requester_email,
            requester_phone, location, status, priority_id, assignee_id, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketCode,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.RequesterPhone,
		ticket.Location,
		ticket.Status,
		ticket.PriorityID,
		ticket.AssigneeID,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority_id=$4,
            assignee_id=$5, updated_by=$6, resolved_at=$7, closed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.PriorityID,
		ticket.AssigneeID,
		ticket.UpdatedBy,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t
        JOIN ticket_priorities p ON p.id = t.priority_id
        WHERE t.id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t
        JOIN ticket_priorities p ON p.id = t.priority_id
        WHERE t.ticket_code=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets t
        JOIN ticket_priorities p ON p.id = t.priority_id`, ticketColumns)
	clauses, args := buildTicketClauses(filter)

	sortColumn := sortColumns[SortByCreatedAt]
	sortDesc := true
	if filter.SortField != "" {
		if col, ok := sortColumns[filter.SortField]; ok {
			sortColumn = col
			sortDesc = filter.SortDesc
		}
	}
	direction := "ASC"
	if sortDesc {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), sortColumn, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t
        JOIN ticket_priorities p ON p.id = t.priority_id
        WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.PriorityIDs) > 0 {
		placeholders := make([]string, len(filter.PriorityIDs))
		for i, id := range filter.PriorityIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ticket_categories tc WHERE tc.ticket_id=t.id AND tc.category_id=$%d)", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.UpdatedFrom != nil {
		args = append(args, *filter.UpdatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.updated_at >= $%d", len(args)))
	}
	if filter.UpdatedTo != nil {
		args = append(args, *filter.UpdatedTo)
		clauses = append(clauses, fmt.Sprintf("t.updated_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.ticket_code) LIKE %s OR LOWER(t.subject) LIKE %s OR LOWER(t.description) LIKE %s OR LOWER(t.requester_name) LIKE %s OR LOWER(t.requester_email) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder, placeholder))
	}

	return clauses, args
}

func (r *ticketRepository) ReplaceCategories(ctx context.Context, ticketID string, categoryIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM ticket_categories WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ticket_categories (ticket_id, category_id) VALUES ($1,$2)`,
			ticketID, categoryID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) ListCategories(ctx context.Context, ticketID string) ([]domain.Category, error) {
	const query = `
        SELECT c.id, c.name, c.is_active, c.created_at, c.updated_at
        FROM categories c
        JOIN ticket_categories tc ON tc.category_id = c.id
        WHERE tc.ticket_id=$1
        ORDER BY c.name`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive,
			&category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var priority domain.TicketPriority
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.Subject,
		&ticket.Description,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.RequesterPhone,
		&ticket.Location,
		&ticket.Status,
		&ticket.PriorityID,
		&ticket.AssigneeID,
		&ticket.CreatedBy,
		&ticket.UpdatedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&priority.ID,
		&priority.Name,
		&priority.SortOrder,
		&priority.IsActive,
	); err != nil {
		return nil, err
	}
	ticket.Priority = &priority
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
