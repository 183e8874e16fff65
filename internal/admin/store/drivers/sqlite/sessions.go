package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, revoked_at, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, millis(s.ExpiresAt), mapOptionalTime(s.RevokedAt),
		s.IPAddress, s.UserAgent, millis(s.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                    domain.Session
		expiresAt, createdAt int64
		revokedAt            sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at, ip_address, user_agent, created_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &expiresAt, &revokedAt, &s.IPAddress, &s.UserAgent, &createdAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.ExpiresAt = fromMillis(expiresAt)
	s.RevokedAt = mapNullTimePtr(revokedAt)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, id string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		millis(now), id,
	))
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ? OR revoked_at IS NOT NULL`,
		millis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
