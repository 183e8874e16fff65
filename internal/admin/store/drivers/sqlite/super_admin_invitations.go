package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

const superAdminInvitationColumns = `i.id, i.token_hash, i.email, i.invited_by, i.status,
	i.accepted_user_id, i.expires_at, i.created_at, i.updated_at`

type superAdminInvitationsRepo struct {
	q querier
}

func scanSuperAdminInvitation(row scanner, extra ...any) (domain.SuperAdminInvitation, error) {
	var (
		inv                             domain.SuperAdminInvitation
		status                          string
		acceptedUserID                  sql.NullString
		expiresAt, createdAt, updatedAt int64
	)
	dest := []any{
		&inv.ID, &inv.TokenHash, &inv.Email, &inv.InvitedBy, &status,
		&acceptedUserID, &expiresAt, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.SuperAdminInvitation{}, mapNotFound(err)
	}

	inv.Status = domain.InvitationStatus(status)
	inv.AcceptedUserID = mapNullString(acceptedUserID)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CreatedAt = fromMillis(createdAt)
	inv.UpdatedAt = fromMillis(updatedAt)
	return inv, nil
}

func (r *superAdminInvitationsRepo) CreateSuperAdminInvitation(
	ctx context.Context,
	inv domain.SuperAdminInvitation,
) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO super_admin_invitations (
			id, token_hash, email, invited_by, status,
			accepted_user_id, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, domain.NormalizeEmail(inv.Email), inv.InvitedBy, string(inv.Status),
		mapStringNull(inv.AcceptedUserID), millis(inv.ExpiresAt), millis(inv.CreatedAt),
		millis(inv.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *superAdminInvitationsRepo) GetSuperAdminInvitationByID(
	ctx context.Context,
	id string,
) (domain.SuperAdminInvitation, error) {
	return scanSuperAdminInvitation(r.q.QueryRowContext(ctx,
		`SELECT `+superAdminInvitationColumns+` FROM super_admin_invitations i WHERE i.id = ?`, id))
}

func (r *superAdminInvitationsRepo) GetSuperAdminInvitationByTokenHash(
	ctx context.Context,
	hash string,
) (domain.SuperAdminInvitationView, error) {
	var view domain.SuperAdminInvitationView
	inv, err := scanSuperAdminInvitation(r.q.QueryRowContext(ctx, `
		SELECT `+superAdminInvitationColumns+`, COALESCE(u.name, '')
		FROM super_admin_invitations i
		LEFT JOIN users u ON u.id = i.invited_by
		WHERE i.token_hash = ?`, hash),
		&view.InviterName,
	)
	if err != nil {
		return domain.SuperAdminInvitationView{}, err
	}
	view.SuperAdminInvitation = inv
	return view, nil
}

func (r *superAdminInvitationsRepo) MarkSuperAdminInvitationAccepted(
	ctx context.Context,
	id, userID string,
	now time.Time,
) error {
	return expectRow(r.q.ExecContext(ctx, `
		UPDATE super_admin_invitations
		SET status = 'ACCEPTED', accepted_user_id = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'`,
		userID, millis(now), id,
	))
}

func (r *superAdminInvitationsRepo) RevokeSuperAdminInvitation(ctx context.Context, id string, now time.Time) error {
	return expectRow(r.q.ExecContext(ctx, `
		UPDATE super_admin_invitations
		SET status = 'REVOKED', updated_at = ?
		WHERE id = ? AND status = 'PENDING'`,
		millis(now), id,
	))
}

func (r *superAdminInvitationsRepo) ListPendingSuperAdminInvitations(
	ctx context.Context,
) ([]domain.SuperAdminInvitationView, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+superAdminInvitationColumns+`, COALESCE(u.name, '')
		FROM super_admin_invitations i
		LEFT JOIN users u ON u.id = i.invited_by
		WHERE i.status = 'PENDING'
		ORDER BY i.created_at DESC, i.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SuperAdminInvitationView{}
	for rows.Next() {
		var view domain.SuperAdminInvitationView
		inv, err := scanSuperAdminInvitation(rows, &view.InviterName)
		if err != nil {
			return nil, err
		}
		view.SuperAdminInvitation = inv
		out = append(out, view)
	}
	return out, rows.Err()
}
