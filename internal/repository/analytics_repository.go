package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// StatusCount pairs a ticket status with its ticket count.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int64
}

// LabelCount pairs a dimension value with its count. Name is nil when the
// referenced row no longer resolves.
type LabelCount struct {
	ID    string
	Name  *string
	Count int64
}

// BucketCount pairs a time bucket with its count. Sparse: buckets without
// tickets are absent and densified by the caller.
type BucketCount struct {
	Bucket time.Time
	Count  int64
}

// AgentLoad pairs an agent with the number of tickets assigned to them.
type AgentLoad struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Count     int64
}

// RoleCount pairs a user role with its user count.
type RoleCount struct {
	Role  domain.UserRole
	Count int64
}

// AgentPerformanceRow aggregates per-agent workload figures.
type AgentPerformanceRow struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Assigned  int64
	Resolved  int64
	Comments  int64
}

// AnalyticsRepository exposes exactly the aggregate reads the dashboard
// needs: count-by-dimension, count-in-range, top-N-by-count and
// mean-of-difference. No mutation.
type AnalyticsRepository interface {
	CountTickets(ctx context.Context) (int64, error)
	CountTicketsByStatus(ctx context.Context) ([]StatusCount, error)
	CountTicketsByPriority(ctx context.Context) ([]LabelCount, error)
	CountTicketsByCategory(ctx context.Context) ([]LabelCount, error)
	TicketsCreatedPerDay(ctx context.Context, from, to time.Time) ([]BucketCount, error)
	TicketsCreatedPerMonth(ctx context.Context, from, to time.Time) ([]BucketCount, error)
	TopAgentsByAssignment(ctx context.Context, limit int) ([]AgentLoad, error)
	ResolutionStats(ctx context.Context) (avgDays float64, resolvedCount int64, err error)
	CountUsersByRole(ctx context.Context) ([]RoleCount, error)
	CountActiveUsers(ctx context.Context) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]domain.User, error)
	RecentLogins(ctx context.Context, limit int) ([]domain.User, error)
	AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) CountTickets(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total)
	return total, err
}

func (r *analyticsRepository) CountTicketsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) CountTicketsByPriority(ctx context.Context) ([]LabelCount, error) {
	const query = `
        SELECT t.priority_id, p.name, COUNT(*)
        FROM tickets t
        LEFT JOIN ticket_priorities p ON p.id = t.priority_id
        GROUP BY t.priority_id, p.name
        ORDER BY COUNT(*) DESC`
	return r.queryLabelCounts(ctx, query)
}

func (r *analyticsRepository) CountTicketsByCategory(ctx context.Context) ([]LabelCount, error) {
	const query = `
        SELECT tc.category_id, c.name, COUNT(*)
        FROM ticket_categories tc
        LEFT JOIN categories c ON c.id = tc.category_id AND c.is_active
        GROUP BY tc.category_id, c.name
        ORDER BY COUNT(*) DESC`
	return r.queryLabelCounts(ctx, query)
}

func (r *analyticsRepository) queryLabelCounts(ctx context.Context, query string) ([]LabelCount, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.ID, &lc.Name, &lc.Count); err != nil {
			return nil, err
		}
		result = append(result, lc)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) TicketsCreatedPerDay(ctx context.Context, from, to time.Time) ([]BucketCount, error) {
	const query = `
        SELECT DATE_TRUNC('day', created_at) AS bucket, COUNT(*)
        FROM tickets
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY bucket
        ORDER BY bucket`
	return r.queryBucketCounts(ctx, query, from, to)
}

func (r *analyticsRepository) TicketsCreatedPerMonth(ctx context.Context, from, to time.Time) ([]BucketCount, error) {
	const query = `
        SELECT DATE_TRUNC('month', created_at) AS bucket, COUNT(*)
        FROM tickets
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY bucket
        ORDER BY bucket`
	return r.queryBucketCounts(ctx, query, from, to)
}

func (r *analyticsRepository) queryBucketCounts(ctx context.Context, query string, from, to time.Time) ([]BucketCount, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BucketCount
	for rows.Next() {
		var bc BucketCount
		if err := rows.Scan(&bc.Bucket, &bc.Count); err != nil {
			return nil, err
		}
		result = append(result, bc)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) TopAgentsByAssignment(ctx context.Context, limit int) ([]AgentLoad, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
        SELECT u.id, u.first_name, u.last_name, u.email, COUNT(t.id)
        FROM users u
        LEFT JOIN tickets t ON t.assignee_id = u.id
        WHERE u.role='AGENT' AND u.is_active
        GROUP BY u.id, u.first_name, u.last_name, u.email
        ORDER BY COUNT(t.id) DESC
        LIMIT ` + itoa(limit)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgentLoad
	for rows.Next() {
		var load AgentLoad
		if err := rows.Scan(&load.UserID, &load.FirstName, &load.LastName, &load.Email, &load.Count); err != nil {
			return nil, err
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) ResolutionStats(ctx context.Context) (float64, int64, error) {
	const query = `
        SELECT COUNT(*),
               COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 86400.0), 0)
        FROM tickets WHERE resolved_at IS NOT NULL`
	var count int64
	var avgDays float64
	if err := r.pool.QueryRow(ctx, query).Scan(&count, &avgDays); err != nil {
		return 0, 0, err
	}
	return avgDays, count, nil
}

func (r *analyticsRepository) CountUsersByRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoleCount
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) CountActiveUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active`).Scan(&total)
	return total, err
}

func (r *analyticsRepository) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT ` + itoa(limit)
	return r.queryUsers(ctx, query)
}

func (r *analyticsRepository) RecentLogins(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + userColumns + ` FROM users
        WHERE last_login_at IS NOT NULL
        ORDER BY last_login_at DESC LIMIT ` + itoa(limit)
	return r.queryUsers(ctx, query)
}

func (r *analyticsRepository) queryUsers(ctx context.Context, query string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.IsActive,
			&user.LastLoginAt,
			&user.LastLoginIP,
			&user.CreatedBy,
			&user.UpdatedBy,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error) {
	const query = `
        SELECT u.id, u.first_name, u.last_name, u.email,
               COUNT(DISTINCT t.id),
               COUNT(DISTINCT t.id) FILTER (WHERE t.status = 'RESOLVED'),
               (SELECT COUNT(*) FROM comments c WHERE c.author_id = u.id)
        FROM users u
        LEFT JOIN tickets t ON t.assignee_id = u.id
        WHERE u.role='AGENT' AND u.is_active
        GROUP BY u.id, u.first_name, u.last_name, u.email
        ORDER BY u.first_name, u.last_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgentPerformanceRow
	for rows.Next() {
		var row AgentPerformanceRow
		if err := rows.Scan(&row.UserID, &row.FirstName, &row.LastName, &row.Email,
			&row.Assigned, &row.Resolved, &row.Comments); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
