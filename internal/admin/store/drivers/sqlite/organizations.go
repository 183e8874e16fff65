package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

const organizationColumns = `o.id, o.name, o.slug, o.plan, o.status, o.monthly_revenue,
	o.industry, o.size, o.contact_email, o.phone, o.website, o.created_by,
	o.last_activity_at, o.suspended_at, o.suspended_by, o.suspension_reason,
	o.created_at, o.updated_at`

type organizationsRepo struct {
	q querier
}

func scanOrganization(row scanner, extra ...any) (domain.Organization, error) {
	var (
		o                domain.Organization
		plan, status     string
		createdBy        sql.NullString
		lastActivityAt   sql.NullInt64
		suspendedAt      sql.NullInt64
		suspendedBy      sql.NullString
		suspensionReason sql.NullString
		createdAt        int64
		updatedAt        int64
	)
	dest := []any{
		&o.ID, &o.Name, &o.Slug, &plan, &status, &o.MonthlyRevenue,
		&o.Industry, &o.Size, &o.ContactEmail, &o.Phone, &o.Website, &createdBy,
		&lastActivityAt, &suspendedAt, &suspendedBy, &suspensionReason,
		&createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Organization{}, mapNotFound(err)
	}

	o.Plan = domain.Plan(plan)
	o.Status = domain.OrganizationStatus(status)
	o.CreatedBy = mapNullString(createdBy)
	o.LastActivityAt = mapNullTimePtr(lastActivityAt)
	o.SuspendedAt = mapNullTimePtr(suspendedAt)
	o.SuspendedBy = mapNullString(suspendedBy)
	o.SuspensionReason = mapNullString(suspensionReason)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return o, nil
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO organizations (
			id, name, slug, plan, status, monthly_revenue,
			industry, size, contact_email, phone, website, created_by,
			last_activity_at, suspended_at, suspended_by, suspension_reason,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Slug, string(o.Plan), string(o.Status), int64(o.MonthlyRevenue),
		o.Industry, o.Size, o.ContactEmail, o.Phone, o.Website, mapStringNull(o.CreatedBy),
		mapOptionalTime(o.LastActivityAt), mapOptionalTime(o.SuspendedAt),
		mapStringNull(o.SuspendedBy), mapStringNull(o.SuspensionReason),
		millis(o.CreatedAt), millis(o.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	return scanOrganization(r.q.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations o WHERE o.id = ?`, id))
}

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	return scanOrganization(r.q.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations o WHERE o.slug = ?`, slug))
}

func (r *organizationsRepo) UpdateOrganization(ctx context.Context, o domain.Organization) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE organizations SET
			name = ?, plan = ?, status = ?, monthly_revenue = ?,
			industry = ?, size = ?, contact_email = ?, phone = ?, website = ?,
			last_activity_at = ?, suspended_at = ?, suspended_by = ?, suspension_reason = ?,
			updated_at = ?
		WHERE id = ?`,
		o.Name, string(o.Plan), string(o.Status), int64(o.MonthlyRevenue),
		o.Industry, o.Size, o.ContactEmail, o.Phone, o.Website,
		mapOptionalTime(o.LastActivityAt), mapOptionalTime(o.SuspendedAt),
		mapStringNull(o.SuspendedBy), mapStringNull(o.SuspensionReason),
		millis(o.UpdatedAt), o.ID,
	)
	return expectFound(res, err)
}

func (r *organizationsRepo) ListOrganizations(
	ctx context.Context,
	f domain.OrganizationFilter,
) ([]domain.OrganizationSummary, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, string(f.Status))
	}
	if f.Plan != "" {
		where = append(where, "o.plan = ?")
		args = append(args, string(f.Plan))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		// LIKE is case-insensitive for ASCII in sqlite.
		pattern := "%" + escapeLike(search) + "%"
		where = append(where, `(o.name LIKE ? ESCAPE '\' OR o.slug LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + organizationColumns + `,
		(SELECT COUNT(*) FROM members m WHERE m.organization_id = o.id)
		FROM organizations o`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.OrganizationSummary{}
	for rows.Next() {
		var count int
		o, err := scanOrganization(rows, &count)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.OrganizationSummary{Organization: o, MemberCount: count})
	}
	return out, rows.Err()
}
