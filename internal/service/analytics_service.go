package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dailyWindowDays   = 30
	monthlyWindowLen  = 12
	unknownLabel      = "Unknown"
)

// AnalyticsService computes read-only dashboard aggregates. Snapshots may
// be served from a short-lived Redis cache; each cached snapshot is
// internally consistent because it is built in one pass.
type AnalyticsService struct {
	repo   repository.AnalyticsRepository
	cache  *redis.Client
	logger *zap.Logger
	cfg    config.AnalyticsConfig
	now    func() time.Time
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	Repo   repository.AnalyticsRepository
	Cache  *redis.Client
	Logger *zap.Logger
	Config config.AnalyticsConfig
}

// NamedCount is a labeled aggregate bucket. Buckets whose referenced row
// no longer resolves carry the Unknown label.
type NamedCount struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SeriesPoint is one bucket of a dense time series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AgentLoadEntry is one row of the top-agents table.
type AgentLoadEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Count  int64  `json:"count"`
}

// ResolutionSummary reports mean time-to-resolution. AverageDays is zero
// and HasData false when no ticket has ever been resolved.
type ResolutionSummary struct {
	AverageDays   float64 `json:"average_days"`
	ResolvedCount int64   `json:"resolved_count"`
	HasData       bool    `json:"has_data"`
}

// DashboardSnapshot is the full ticket dashboard payload.
type DashboardSnapshot struct {
	GeneratedAt     time.Time                     `json:"generated_at"`
	TotalTickets    int64                         `json:"total_tickets"`
	ByStatus        map[domain.TicketStatus]int64 `json:"by_status"`
	OpenTickets     int64                         `json:"open_tickets"`
	ByPriority      []NamedCount                  `json:"by_priority"`
	ByCategory      []NamedCount                  `json:"by_category"`
	CreatedPerDay   []SeriesPoint                 `json:"created_per_day"`
	CreatedPerMonth []SeriesPoint                 `json:"created_per_month"`
	TopAgents       []AgentLoadEntry              `json:"top_agents"`
	Resolution      ResolutionSummary             `json:"resolution"`
}

// UserSnapshot is the user dashboard payload.
type UserSnapshot struct {
	GeneratedAt  time.Time                 `json:"generated_at"`
	ByRole       map[domain.UserRole]int64 `json:"by_role"`
	ActiveUsers  int64                     `json:"active_users"`
	RecentUsers  []UserSummary             `json:"recent_users"`
	RecentLogins []UserSummary             `json:"recent_logins"`
}

// UserSummary is a trimmed user projection for dashboard listings.
type UserSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AgentPerformanceEntry reports per-agent workload figures.
type AgentPerformanceEntry struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Assigned       int64   `json:"assigned"`
	Resolved       int64   `json:"resolved"`
	ResolutionRate float64 `json:"resolution_rate"`
	Comments       int64   `json:"comments"`
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:   deps.Repo,
		cache:  deps.Cache,
		logger: logger,
		cfg:    deps.Config,
		now:    time.Now,
	}
}

// Dashboard builds the ticket dashboard snapshot, serving from cache when
// a fresh snapshot exists.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor *domain.User) (*DashboardSnapshot, error) {
	if actor == nil || !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	if cached := s.cachedSnapshot(ctx); cached != nil {
		return cached, nil
	}

	snapshot, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}
	s.storeSnapshot(ctx, snapshot)
	return snapshot, nil
}

func (s *AnalyticsService) buildDashboard(ctx context.Context) (*DashboardSnapshot, error) {
	now := s.now().UTC()
	dayFrom := truncateDay(now).AddDate(0, 0, -(dailyWindowDays - 1))
	monthFrom := truncateMonth(now).AddDate(0, -(monthlyWindowLen - 1), 0)

	var (
		total        int64
		statusCounts []repository.StatusCount
		byPriority   []repository.LabelCount
		byCategory   []repository.LabelCount
		perDay       []repository.BucketCount
		perMonth     []repository.BucketCount
		topAgents    []repository.AgentLoad
		avgDays      float64
		resolved     int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		total, err = s.repo.CountTickets(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		statusCounts, err = s.repo.CountTicketsByStatus(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		byPriority, err = s.repo.CountTicketsByPriority(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		byCategory, err = s.repo.CountTicketsByCategory(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		perDay, err = s.repo.TicketsCreatedPerDay(groupCtx, dayFrom, truncateDay(now).AddDate(0, 0, 1))
		return err
	})
	group.Go(func() (err error) {
		perMonth, err = s.repo.TicketsCreatedPerMonth(groupCtx, monthFrom, truncateMonth(now).AddDate(0, 1, 0))
		return err
	})
	group.Go(func() (err error) {
		topAgents, err = s.repo.TopAgentsByAssignment(groupCtx, s.cfg.TopAgentLimit)
		return err
	})
	group.Go(func() (err error) {
		avgDays, resolved, err = s.repo.ResolutionStats(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	byStatus := make(map[domain.TicketStatus]int64, len(statusCounts))
	var open int64
	for _, sc := range statusCounts {
		byStatus[sc.Status] = sc.Count
	}
	for _, status := range domain.ActiveStatuses {
		open += byStatus[status]
	}

	agents := make([]AgentLoadEntry, 0, len(topAgents))
	for _, load := range topAgents {
		agents = append(agents, AgentLoadEntry{
			UserID: load.UserID,
			Name:   joinName(load.FirstName, load.LastName),
			Email:  load.Email,
			Count:  load.Count,
		})
	}

	resolution := ResolutionSummary{ResolvedCount: resolved}
	if resolved > 0 {
		resolution.AverageDays = avgDays
		resolution.HasData = true
	}

	return &DashboardSnapshot{
		GeneratedAt:     now,
		TotalTickets:    total,
		ByStatus:        byStatus,
		OpenTickets:     open,
		ByPriority:      labelCounts(byPriority),
		ByCategory:      labelCounts(byCategory),
		CreatedPerDay:   denseDailySeries(perDay, truncateDay(now)),
		CreatedPerMonth: denseMonthlySeries(perMonth, truncateMonth(now)),
		TopAgents:       agents,
		Resolution:      resolution,
	}, nil
}

// Users builds the user dashboard snapshot.
func (s *AnalyticsService) Users(ctx context.Context, actor *domain.User) (*UserSnapshot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		roleCounts []repository.RoleCount
		active     int64
		recent     []domain.User
		logins     []domain.User
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		roleCounts, err = s.repo.CountUsersByRole(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		active, err = s.repo.CountActiveUsers(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		recent, err = s.repo.RecentUsers(groupCtx, s.cfg.RecentUserLimit)
		return err
	})
	group.Go(func() (err error) {
		logins, err = s.repo.RecentLogins(groupCtx, s.cfg.RecentUserLimit)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	byRole := make(map[domain.UserRole]int64, len(roleCounts))
	for _, rc := range roleCounts {
		byRole[rc.Role] = rc.Count
	}

	return &UserSnapshot{
		GeneratedAt:  s.now().UTC(),
		ByRole:       byRole,
		ActiveUsers:  active,
		RecentUsers:  userSummaries(recent),
		RecentLogins: userSummaries(logins),
	}, nil
}

// AgentPerformance reports per-agent workload for all active agents.
func (s *AnalyticsService) AgentPerformance(ctx context.Context, actor *domain.User) ([]AgentPerformanceEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.AgentPerformance(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]AgentPerformanceEntry, 0, len(rows))
	for _, row := range rows {
		entry := AgentPerformanceEntry{
			UserID:   row.UserID,
			Name:     joinName(row.FirstName, row.LastName),
			Email:    row.Email,
			Assigned: row.Assigned,
			Resolved: row.Resolved,
			Comments: row.Comments,
		}
		if row.Assigned > 0 {
			entry.ResolutionRate = float64(row.Resolved) / float64(row.Assigned)
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *AnalyticsService) cachedSnapshot(ctx context.Context) *DashboardSnapshot {
	if s.cache == nil || s.cfg.SnapshotCacheTTL() <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var snapshot DashboardSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.logger.Warn("dashboard cache decode failed", zap.Error(err))
		return nil
	}
	return &snapshot
}

func (s *AnalyticsService) storeSnapshot(ctx context.Context, snapshot *DashboardSnapshot) {
	ttl := s.cfg.SnapshotCacheTTL()
	if s.cache == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("dashboard cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, ttl).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// labelCounts maps raw dimension buckets into labeled counts, replacing
// unresolvable references with the Unknown label.
func labelCounts(rows []repository.LabelCount) []NamedCount {
	result := make([]NamedCount, 0, len(rows))
	for _, row := range rows {
		label := unknownLabel
		if row.Name != nil && *row.Name != "" {
			label = *row.Name
		}
		result = append(result, NamedCount{ID: row.ID, Label: label, Count: row.Count})
	}
	return result
}

// denseDailySeries expands sparse day buckets into one entry per day for
// the trailing window, zero-filling days without tickets.
func denseDailySeries(rows []repository.BucketCount, today time.Time) []SeriesPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket.UTC().Format("2006-01-02")] = row.Count
	}
	series := make([]SeriesPoint, 0, dailyWindowDays)
	for i := dailyWindowDays - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format("2006-01-02")
		series = append(series, SeriesPoint{Date: key, Count: counts[key]})
	}
	return series
}

// denseMonthlySeries expands sparse month buckets into one entry per
// month for the trailing window, zero-filling months without tickets.
func denseMonthlySeries(rows []repository.BucketCount, thisMonth time.Time) []SeriesPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket.UTC().Format("2006-01")] = row.Count
	}
	series := make([]SeriesPoint, 0, monthlyWindowLen)
	for i := monthlyWindowLen - 1; i >= 0; i-- {
		key := thisMonth.AddDate(0, -i, 0).Format("2006-01")
		series = append(series, SeriesPoint{Date: key, Count: counts[key]})
	}
	return series
}

func userSummaries(users []domain.User) []UserSummary {
	result := make([]UserSummary, 0, len(users))
	for i := range users {
		user := &users[i]
		result = append(result, UserSummary{
			ID:          user.ID,
			Name:        user.FullName(),
			Email:       user.Email,
			Role:        string(user.Role),
			IsActive:    user.IsActive,
			LastLoginAt: user.LastLoginAt,
			CreatedAt:   user.CreatedAt,
		})
	}
	return result
}

func joinName(first, last string) string {
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
