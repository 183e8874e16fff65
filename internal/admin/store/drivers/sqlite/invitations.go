package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

const invitationColumns = `i.id, i.token_hash, i.email, i.organization_id, i.role, i.supplier_id,
	i.status, i.invited_by, i.accepted_user_id, i.expires_at, i.created_at, i.updated_at`

type invitationsRepo struct {
	q querier
}

func scanInvitation(row scanner, extra ...any) (domain.Invitation, error) {
	var (
		inv                             domain.Invitation
		role, status                    string
		supplierID, acceptedUserID      sql.NullString
		expiresAt, createdAt, updatedAt int64
	)
	dest := []any{
		&inv.ID, &inv.TokenHash, &inv.Email, &inv.OrganizationID, &role, &supplierID,
		&status, &inv.InvitedBy, &acceptedUserID, &expiresAt, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}

	inv.Role = domain.Role(role)
	inv.Status = domain.InvitationStatus(status)
	inv.SupplierID = mapNullString(supplierID)
	inv.AcceptedUserID = mapNullString(acceptedUserID)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CreatedAt = fromMillis(createdAt)
	inv.UpdatedAt = fromMillis(updatedAt)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (
			id, token_hash, email, organization_id, role, supplier_id,
			status, invited_by, accepted_user_id, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, domain.NormalizeEmail(inv.Email), inv.OrganizationID,
		string(inv.Role), mapStringNull(inv.SupplierID), string(inv.Status), inv.InvitedBy,
		mapStringNull(inv.AcceptedUserID), millis(inv.ExpiresAt), millis(inv.CreatedAt),
		millis(inv.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return scanInvitation(r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations i WHERE i.id = ?`, id))
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.InvitationView, error) {
	var view domain.InvitationView
	inv, err := scanInvitation(r.q.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`, COALESCE(o.name, ''), COALESCE(u.name, '')
		FROM invitations i
		LEFT JOIN organizations o ON o.id = i.organization_id
		LEFT JOIN users u ON u.id = i.invited_by
		WHERE i.token_hash = ?`, hash),
		&view.OrganizationName, &view.InviterName,
	)
	if err != nil {
		return domain.InvitationView{}, err
	}
	view.Invitation = inv
	return view, nil
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id, userID string, now time.Time) error {
	return expectRow(r.q.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'ACCEPTED', accepted_user_id = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'`,
		userID, millis(now), id,
	))
}

func (r *invitationsRepo) RevokeInvitation(ctx context.Context, id string, now time.Time) error {
	return expectRow(r.q.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'REVOKED', updated_at = ?
		WHERE id = ? AND status = 'PENDING'`,
		millis(now), id,
	))
}

func (r *invitationsRepo) ListOrganizationInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations i
		WHERE i.organization_id = ?
		ORDER BY i.created_at DESC, i.id DESC`, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
