package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type insightsRepo struct {
	q querier
}

func (r *insightsRepo) SumActiveRevenue(ctx context.Context) (domain.Cents, error) {
	var total int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(monthly_revenue), 0) FROM organizations WHERE status = 'ACTIVE'`,
	).Scan(&total)
	return domain.Cents(total), err
}

func (r *insightsRepo) CountActiveOrganizations(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM organizations
		WHERE status = 'ACTIVE' AND last_activity_at >= ?`,
		millis(since),
	).Scan(&n)
	return n, err
}

func (r *insightsRepo) CountOrganizations(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&n)
	return n, err
}

func (r *insightsRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *insightsRepo) CountOrganizationsByStatus(ctx context.Context) (map[domain.OrganizationStatus]int, error) {
	counts, err := r.groupCount(ctx, `SELECT status, COUNT(*) FROM organizations GROUP BY status`)
	if err != nil {
		return nil, err
	}

	out := make(map[domain.OrganizationStatus]int, len(domain.OrganizationStatuses))
	for _, s := range domain.OrganizationStatuses {
		out[s] = counts[string(s)]
	}
	return out, nil
}

func (r *insightsRepo) CountOrganizationsByPlan(ctx context.Context) (map[domain.Plan]int, error) {
	counts, err := r.groupCount(ctx, `SELECT plan, COUNT(*) FROM organizations GROUP BY plan`)
	if err != nil {
		return nil, err
	}

	out := make(map[domain.Plan]int, len(domain.Plans))
	for _, p := range domain.Plans {
		out[p] = counts[string(p)]
	}
	return out, nil
}

func (r *insightsRepo) OrganizationSignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyCount, error) {
	return r.monthly(ctx, `
		SELECT strftime('%Y-%m', created_at / 1000, 'unixepoch') AS month, COUNT(*)
		FROM organizations WHERE created_at >= ?
		GROUP BY month ORDER BY month`, since)
}

func (r *insightsRepo) UserSignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyCount, error) {
	return r.monthly(ctx, `
		SELECT strftime('%Y-%m', created_at / 1000, 'unixepoch') AS month, COUNT(*)
		FROM users WHERE created_at >= ?
		GROUP BY month ORDER BY month`, since)
}

func (r *insightsRepo) groupCount(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *insightsRepo) monthly(ctx context.Context, query string, since time.Time) ([]domain.MonthlyCount, error) {
	rows, err := r.q.QueryContext(ctx, query, millis(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MonthlyCount{}
	for rows.Next() {
		var mc domain.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}
