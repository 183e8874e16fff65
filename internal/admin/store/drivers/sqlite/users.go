package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

const userColumns = `id, email, name, password_hash, role, organization_id, supplier_id,
	is_suspended, email_verified, mfa_secret, mfa_enabled_at, created_at, updated_at`

type usersRepo struct {
	q querier
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u            domain.User
		role         string
		passwordHash sql.NullString
		orgID        sql.NullString
		supplierID   sql.NullString
		mfaSecret    sql.NullString
		mfaEnabledAt sql.NullInt64
		createdAt    int64
		updatedAt    int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &passwordHash, &role, &orgID, &supplierID,
		&u.IsSuspended, &u.EmailVerified, &mfaSecret, &mfaEnabledAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.PasswordHash = mapNullString(passwordHash)
	u.OrganizationID = mapNullString(orgID)
	u.SupplierID = mapNullString(supplierID)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	u.MFAEnabledAt = mapNullTimePtr(mfaEnabledAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		domain.NormalizeEmail(u.Email),
		u.Name,
		mapStringNull(u.PasswordHash),
		string(u.Role),
		mapStringNull(u.OrganizationID),
		mapStringNull(u.SupplierID),
		u.IsSuspended,
		u.EmailVerified,
		mapOptionalString(u.MFASecret),
		mapOptionalTime(u.MFAEnabledAt),
		millis(u.CreatedAt),
		millis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) AssignRole(
	ctx context.Context,
	userID string,
	role domain.Role,
	orgID string,
	now time.Time,
) error {
	return expectFound(r.q.ExecContext(ctx, `
		UPDATE users
		SET role = ?,
		    organization_id = COALESCE(organization_id, ?),
		    email_verified = 1,
		    updated_at = ?
		WHERE id = ?`,
		string(role), mapStringNull(orgID), millis(now), userID,
	))
}

func (r *usersRepo) SetSupplier(ctx context.Context, userID, supplierID string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE users SET supplier_id = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(supplierID), millis(now), userID,
	))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists)
	return !exists, err
}

func (r *usersRepo) SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserSearchResult, error) {
	pattern := "%" + escapeLike(query) + "%"

	// Organization comes from the user's own column first, then from the
	// oldest membership.
	rows, err := r.q.QueryContext(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.is_suspended, u.created_at,
		       COALESCE(o.id, mo.id, ''), COALESCE(o.name, mo.name, '')
		FROM users u
		LEFT JOIN organizations o ON o.id = u.organization_id
		LEFT JOIN organizations mo ON mo.id = (
			SELECT m.organization_id FROM members m
			WHERE m.user_id = u.id
			ORDER BY m.created_at, m.id
			LIMIT 1
		)
		WHERE u.name LIKE ? ESCAPE '\' OR u.email LIKE ? ESCAPE '\'
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UserSearchResult{}
	for rows.Next() {
		var (
			res       domain.UserSearchResult
			role      string
			createdAt int64
		)
		if err := rows.Scan(
			&res.ID, &res.Email, &res.Name, &role, &res.IsSuspended, &createdAt,
			&res.OrganizationID, &res.OrganizationName,
		); err != nil {
			return nil, err
		}
		res.Role = domain.Role(role)
		res.CreatedAt = fromMillis(createdAt)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, millis(now), userID,
	))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ? AND mfa_secret IS NOT NULL`,
		millis(now), millis(now), userID,
	))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?`,
		millis(now), userID,
	))
}
