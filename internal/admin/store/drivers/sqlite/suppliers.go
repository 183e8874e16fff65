package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type suppliersRepo struct {
	q querier
}

func (r *suppliersRepo) CreateSupplier(ctx context.Context, s domain.Supplier) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO suppliers (id, organization_id, name, contact_email, user_id, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.OrganizationID, s.Name, s.ContactEmail, mapStringNull(s.UserID), string(s.Status),
	)
	return mapConstraint(err)
}

func (r *suppliersRepo) GetSupplierByID(ctx context.Context, id string) (domain.Supplier, error) {
	var (
		s      domain.Supplier
		userID sql.NullString
		status string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, organization_id, name, contact_email, user_id, status
		FROM suppliers WHERE id = ?`, id,
	).Scan(&s.ID, &s.OrganizationID, &s.Name, &s.ContactEmail, &userID, &status)
	if err != nil {
		return domain.Supplier{}, mapNotFound(err)
	}

	s.UserID = mapNullString(userID)
	s.Status = domain.SupplierStatus(status)
	return s, nil
}

func (r *suppliersRepo) LinkSupplierUser(
	ctx context.Context,
	supplierID, userID string,
	status domain.SupplierStatus,
) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE suppliers SET user_id = ?, status = ? WHERE id = ?`,
		userID, string(status), supplierID,
	))
}
