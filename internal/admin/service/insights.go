package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

const (
	defaultGrowthMonths = 6
	maxGrowthMonths     = 36

	defaultActivityLimit = 50
	maxActivityLimit     = 200

	userSearchLimit = 50
)

// InsightsService answers the dashboard's read-only questions.
type InsightsService struct {
	Store store.Store
	Now   func() time.Time
}

// PlatformStats summarizes revenue, organizations and users.
func (s *InsightsService) PlatformStats(ctx context.Context, caller domain.Caller) (domain.PlatformStats, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return domain.PlatformStats{}, err
	}

	ins := s.Store.Insights()
	since := clock(s.Now).AddDate(0, 0, -domain.ActiveWindowDays)

	var (
		stats domain.PlatformStats
		err   error
	)
	if stats.TotalMRR, err = ins.SumActiveRevenue(ctx); err != nil {
		return s.fail(ctx, "revenue", err)
	}
	if stats.ActiveOrgs, err = ins.CountActiveOrganizations(ctx, since); err != nil {
		return s.fail(ctx, "active organizations", err)
	}
	if stats.TotalOrgs, err = ins.CountOrganizations(ctx); err != nil {
		return s.fail(ctx, "organizations", err)
	}
	if stats.TotalUsers, err = ins.CountUsers(ctx); err != nil {
		return s.fail(ctx, "users", err)
	}
	if stats.OrgsByStatus, err = ins.CountOrganizationsByStatus(ctx); err != nil {
		return s.fail(ctx, "organizations by status", err)
	}
	if stats.OrgsByPlan, err = ins.CountOrganizationsByPlan(ctx); err != nil {
		return s.fail(ctx, "organizations by plan", err)
	}
	return stats, nil
}

func (s *InsightsService) fail(ctx context.Context, what string, err error) (domain.PlatformStats, error) {
	slogx.FromContext(ctx).Error("failed to aggregate "+what, slog.Any("error", err))
	return domain.PlatformStats{}, err
}

// Growth returns signups for the last months calendar months, oldest first,
// including the current month. Months without signups report zero.
func (s *InsightsService) Growth(ctx context.Context, caller domain.Caller, months int) ([]domain.GrowthPoint, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	months = clampLimit(months, defaultGrowthMonths, maxGrowthMonths)

	// 1. Build the zero-filled month axis
	now := clock(s.Now)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	points := make([]domain.GrowthPoint, months)
	index := make(map[string]int, months)
	for i := range points {
		key := start.AddDate(0, i, 0).Format("2006-01")
		points[i].Month = key
		index[key] = i
	}

	// 2. Fold in the store's sparse buckets
	orgs, err := s.Store.Insights().OrganizationSignupsByMonth(ctx, start)
	if err != nil {
		log.Error("failed to aggregate organization signups", slog.Any("error", err))
		return nil, err
	}
	for _, c := range orgs {
		if i, ok := index[c.Month]; ok {
			points[i].Organizations = c.Count
		}
	}

	users, err := s.Store.Insights().UserSignupsByMonth(ctx, start)
	if err != nil {
		log.Error("failed to aggregate user signups", slog.Any("error", err))
		return nil, err
	}
	for _, c := range users {
		if i, ok := index[c.Month]; ok {
			points[i].Users = c.Count
		}
	}
	return points, nil
}

// RecentActivity returns the newest audit entries across all targets.
func (s *InsightsService) RecentActivity(ctx context.Context, caller domain.Caller, limit int) ([]domain.AuditEntry, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	entries, err := s.Store.AuditLogs().ListAuditLogs(ctx, domain.AuditFilter{
		Limit: clampLimit(limit, defaultActivityLimit, maxActivityLimit),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list recent activity", slog.Any("error", err))
		return nil, err
	}
	return entries, nil
}

// SearchUsers matches query against names and emails. An empty query
// returns the newest users.
func (s *InsightsService) SearchUsers(
	ctx context.Context,
	caller domain.Caller,
	query string,
) ([]domain.UserSearchResult, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if len(query) > 255 {
		return nil, invalidField("q", "must be at most 255 characters")
	}

	users, err := s.Store.Users().SearchUsers(ctx, query, userSearchLimit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to search users", slog.Any("error", err))
		return nil, err
	}
	return users, nil
}
