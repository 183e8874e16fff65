package sqlite

import (
	"context"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type membersRepo struct {
	q querier
}

func (r *membersRepo) AddMember(ctx context.Context, m domain.Member) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO members (id, user_id, organization_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.OrganizationID, string(m.Role), millis(m.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *membersRepo) ListMembers(ctx context.Context, orgID string) ([]domain.MemberView, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.organization_id, m.role, m.created_at, u.name, u.email
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = ?
		ORDER BY m.created_at, m.id`, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MemberView{}
	for rows.Next() {
		var (
			v         domain.MemberView
			role      string
			createdAt int64
		)
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.OrganizationID, &role, &createdAt, &v.UserName, &v.UserEmail,
		); err != nil {
			return nil, err
		}
		v.Role = domain.Role(role)
		v.CreatedAt = fromMillis(createdAt)
		out = append(out, v)
	}
	return out, rows.Err()
}
