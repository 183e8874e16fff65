package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
)

const impersonationTokenColumns = `id, token_hash, super_admin_id, target_user_id, expires_at, used_at, created_at`

type impersonationTokensRepo struct {
	q querier
}

func scanImpersonationToken(row scanner) (domain.ImpersonationToken, error) {
	var (
		t                    domain.ImpersonationToken
		expiresAt, createdAt int64
		usedAt               sql.NullInt64
	)
	if err := row.Scan(
		&t.ID, &t.TokenHash, &t.SuperAdminID, &t.TargetUserID, &expiresAt, &usedAt, &createdAt,
	); err != nil {
		return domain.ImpersonationToken{}, err
	}

	t.ExpiresAt = fromMillis(expiresAt)
	t.UsedAt = mapNullTimePtr(usedAt)
	t.CreatedAt = fromMillis(createdAt)
	return t, nil
}

func (r *impersonationTokensRepo) CreateImpersonationToken(ctx context.Context, t domain.ImpersonationToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO impersonation_tokens (`+impersonationTokenColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TokenHash, t.SuperAdminID, t.TargetUserID,
		millis(t.ExpiresAt), mapOptionalTime(t.UsedAt), millis(t.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *impersonationTokensRepo) GetImpersonationTokenByHash(
	ctx context.Context,
	hash string,
) (domain.ImpersonationToken, error) {
	t, err := scanImpersonationToken(r.q.QueryRowContext(ctx,
		`SELECT `+impersonationTokenColumns+` FROM impersonation_tokens WHERE token_hash = ?`, hash))
	if err != nil {
		return domain.ImpersonationToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *impersonationTokensRepo) ConsumeImpersonationToken(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.ImpersonationToken, error) {
	// Check and mark happen in one statement so two concurrent consumers
	// cannot both see used_at as NULL.
	t, err := scanImpersonationToken(r.q.QueryRowContext(ctx, `
		UPDATE impersonation_tokens
		SET used_at = ?
		WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?
		RETURNING `+impersonationTokenColumns,
		millis(now), hash, millis(now),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ImpersonationToken{}, store.ErrStateChanged
	}
	return t, err
}

func (r *impersonationTokensRepo) DeleteStaleImpersonationTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM impersonation_tokens WHERE used_at IS NULL AND expires_at <= ?`,
		millis(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
