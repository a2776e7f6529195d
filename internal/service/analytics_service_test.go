package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

type fakeAnalyticsRepo struct {
	total       int64
	byStatus    []repository.StatusCount
	byPriority  []repository.LabelCount
	byCategory  []repository.LabelCount
	perDay      []repository.BucketCount
	perMonth    []repository.BucketCount
	topAgents   []repository.AgentLoad
	avgDays     float64
	resolved    int64
	byRole      []repository.RoleCount
	activeUsers int64
	recent      []domain.User
	logins      []domain.User
	performance []repository.AgentPerformanceRow
}

func (f *fakeAnalyticsRepo) CountTickets(context.Context) (int64, error) { return f.total, nil }
func (f *fakeAnalyticsRepo) CountTicketsByStatus(context.Context) ([]repository.StatusCount, error) {
	return f.byStatus, nil
}
func (f *fakeAnalyticsRepo) CountTicketsByPriority(context.Context) ([]repository.LabelCount, error) {
	return f.byPriority, nil
}
func (f *fakeAnalyticsRepo) CountTicketsByCategory(context.Context) ([]repository.LabelCount, error) {
	return f.byCategory, nil
}
func (f *fakeAnalyticsRepo) TicketsCreatedPerDay(context.Context, time.Time, time.Time) ([]repository.BucketCount, error) {
	return f.perDay, nil
}
func (f *fakeAnalyticsRepo) TicketsCreatedPerMonth(context.Context, time.Time, time.Time) ([]repository.BucketCount, error) {
	return f.perMonth, nil
}
func (f *fakeAnalyticsRepo) TopAgentsByAssignment(context.Context, int) ([]repository.AgentLoad, error) {
	return f.topAgents, nil
}
func (f *fakeAnalyticsRepo) ResolutionStats(context.Context) (float64, int64, error) {
	return f.avgDays, f.resolved, nil
}
func (f *fakeAnalyticsRepo) CountUsersByRole(context.Context) ([]repository.RoleCount, error) {
	return f.byRole, nil
}
func (f *fakeAnalyticsRepo) CountActiveUsers(context.Context) (int64, error) {
	return f.activeUsers, nil
}
func (f *fakeAnalyticsRepo) RecentUsers(context.Context, int) ([]domain.User, error) {
	return f.recent, nil
}
func (f *fakeAnalyticsRepo) RecentLogins(context.Context, int) ([]domain.User, error) {
	return f.logins, nil
}
func (f *fakeAnalyticsRepo) AgentPerformance(context.Context) ([]repository.AgentPerformanceRow, error) {
	return f.performance, nil
}

func newAnalyticsFixture(repo *fakeAnalyticsRepo) *AnalyticsService {
	return NewAnalyticsService(AnalyticsDependencies{
		Repo:   repo,
		Config: config.AnalyticsConfig{TopAgentLimit: 10, RecentUserLimit: 5},
	})
}

func TestDashboardEmptySystem(t *testing.T) {
	svc := newAnalyticsFixture(&fakeAnalyticsRepo{})

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	assert.Zero(t, snapshot.TotalTickets)
	assert.Zero(t, snapshot.OpenTickets)
	assert.False(t, snapshot.Resolution.HasData)
	assert.Zero(t, snapshot.Resolution.AverageDays)
	assert.Len(t, snapshot.CreatedPerDay, 30)
	assert.Len(t, snapshot.CreatedPerMonth, 12)
	for _, point := range snapshot.CreatedPerDay {
		assert.Zero(t, point.Count)
	}
}

func TestDashboardDenseDailySeries(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{
		perDay: []repository.BucketCount{
			{Bucket: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), Count: 4},
			{Bucket: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), Count: 2},
		},
	}
	svc := newAnalyticsFixture(repo)
	svc.now = func() time.Time { return now }

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	require.Len(t, snapshot.CreatedPerDay, 30)
	assert.Equal(t, "2026-08-01", snapshot.CreatedPerDay[0].Date)
	assert.Equal(t, "2026-08-30", snapshot.CreatedPerDay[29].Date)
	assert.Equal(t, int64(4), snapshot.CreatedPerDay[29].Count)

	var nonZero int
	for _, point := range snapshot.CreatedPerDay {
		if point.Count > 0 {
			nonZero++
		}
		if point.Date == "2026-08-15" {
			assert.Equal(t, int64(2), point.Count)
		}
	}
	assert.Equal(t, 2, nonZero)
}

func TestDashboardDenseMonthlySeries(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{
		perMonth: []repository.BucketCount{
			{Bucket: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), Count: 7},
		},
	}
	svc := newAnalyticsFixture(repo)
	svc.now = func() time.Time { return now }

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	require.Len(t, snapshot.CreatedPerMonth, 12)
	assert.Equal(t, "2025-09", snapshot.CreatedPerMonth[0].Date)
	assert.Equal(t, int64(7), snapshot.CreatedPerMonth[0].Count)
	assert.Equal(t, "2026-08", snapshot.CreatedPerMonth[11].Date)
}

func TestDashboardUnknownLabelFallback(t *testing.T) {
	name := "Hardware"
	repo := &fakeAnalyticsRepo{
		byPriority: []repository.LabelCount{
			{ID: "p1", Name: &name, Count: 5},
			{ID: "p2", Name: nil, Count: 3},
		},
		byCategory: []repository.LabelCount{
			{ID: "c1", Name: nil, Count: 9},
		},
	}
	svc := newAnalyticsFixture(repo)

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	require.Len(t, snapshot.ByPriority, 2)
	assert.Equal(t, "Hardware", snapshot.ByPriority[0].Label)
	assert.Equal(t, "Unknown", snapshot.ByPriority[1].Label)
	require.Len(t, snapshot.ByCategory, 1)
	assert.Equal(t, "Unknown", snapshot.ByCategory[0].Label)
	assert.Equal(t, int64(9), snapshot.ByCategory[0].Count)
}

func TestDashboardOpenTicketCount(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		total: 20,
		byStatus: []repository.StatusCount{
			{Status: domain.TicketStatusNew, Count: 3},
			{Status: domain.TicketStatusInProgress, Count: 4},
			{Status: domain.TicketStatusReopened, Count: 1},
			{Status: domain.TicketStatusResolved, Count: 7},
			{Status: domain.TicketStatusClosed, Count: 5},
		},
	}
	svc := newAnalyticsFixture(repo)

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	assert.Equal(t, int64(20), snapshot.TotalTickets)
	assert.Equal(t, int64(8), snapshot.OpenTickets)
}

func TestDashboardResolutionStats(t *testing.T) {
	svc := newAnalyticsFixture(&fakeAnalyticsRepo{avgDays: 2.5, resolved: 12})

	snapshot, err := svc.Dashboard(context.Background(), adminUser())
	require.NoError(t, err)

	assert.True(t, snapshot.Resolution.HasData)
	assert.InDelta(t, 2.5, snapshot.Resolution.AverageDays, 0.0001)
	assert.Equal(t, int64(12), snapshot.Resolution.ResolvedCount)
}

func TestDashboardRequiresStaff(t *testing.T) {
	svc := newAnalyticsFixture(&fakeAnalyticsRepo{})
	customer := &domain.User{Role: domain.RoleCustomer, IsActive: true}

	_, err := svc.Dashboard(context.Background(), customer)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUserSnapshot(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		byRole: []repository.RoleCount{
			{Role: domain.RoleAgent, Count: 4},
			{Role: domain.RoleCustomer, Count: 40},
		},
		activeUsers: 42,
		recent:      []domain.User{{ID: "u1", FirstName: "Ada", LastName: "L"}},
	}
	svc := newAnalyticsFixture(repo)

	snapshot, err := svc.Users(context.Background(), adminUser())
	require.NoError(t, err)

	assert.Equal(t, int64(4), snapshot.ByRole[domain.RoleAgent])
	assert.Equal(t, int64(42), snapshot.ActiveUsers)
	require.Len(t, snapshot.RecentUsers, 1)
	assert.Equal(t, "Ada L", snapshot.RecentUsers[0].Name)
}

func TestAgentPerformanceRates(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		performance: []repository.AgentPerformanceRow{
			{UserID: "a1", FirstName: "Kim", Assigned: 10, Resolved: 4, Comments: 20},
			{UserID: "a2", FirstName: "Lee", Assigned: 0, Resolved: 0, Comments: 1},
		},
	}
	svc := newAnalyticsFixture(repo)

	entries, err := svc.AgentPerformance(context.Background(), adminUser())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.InDelta(t, 0.4, entries[0].ResolutionRate, 0.0001)
	// No assignments must not divide by zero.
	assert.Zero(t, entries[1].ResolutionRate)
}
