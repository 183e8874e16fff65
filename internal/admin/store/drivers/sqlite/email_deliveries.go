package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type emailDeliveriesRepo struct {
	q querier
}

func (r *emailDeliveriesRepo) CreateEmailDelivery(ctx context.Context, d domain.EmailDelivery) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO email_deliveries (
			id, recipient, subject, template, status,
			provider_message_id, error, created_at, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Recipient, d.Subject, d.Template, string(d.Status),
		d.ProviderMessageID, d.Error, millis(d.CreatedAt), mapOptionalTime(d.SentAt),
	)
	return mapConstraint(err)
}

func (r *emailDeliveriesRepo) MarkEmailSent(ctx context.Context, id, providerMessageID string, now time.Time) error {
	return expectFound(r.q.ExecContext(ctx, `
		UPDATE email_deliveries
		SET status = 'SENT', provider_message_id = ?, error = '', sent_at = ?
		WHERE id = ?`,
		providerMessageID, millis(now), id,
	))
}

func (r *emailDeliveriesRepo) MarkEmailFailed(ctx context.Context, id, reason string) error {
	return expectFound(r.q.ExecContext(ctx,
		`UPDATE email_deliveries SET status = 'FAILED', error = ? WHERE id = ?`,
		reason, id,
	))
}

func (r *emailDeliveriesRepo) ListEmailDeliveries(
	ctx context.Context,
	status domain.DeliveryStatus,
	limit int,
) ([]domain.EmailDelivery, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, recipient, subject, template, status,
		       provider_message_id, error, created_at, sent_at
		FROM email_deliveries
		WHERE ? = '' OR status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		string(status), string(status), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.EmailDelivery{}
	for rows.Next() {
		var (
			d         domain.EmailDelivery
			st        string
			createdAt int64
			sentAt    sql.NullInt64
		)
		if err := rows.Scan(
			&d.ID, &d.Recipient, &d.Subject, &d.Template, &st,
			&d.ProviderMessageID, &d.Error, &createdAt, &sentAt,
		); err != nil {
			return nil, err
		}
		d.Status = domain.DeliveryStatus(st)
		d.CreatedAt = fromMillis(createdAt)
		d.SentAt = mapNullTimePtr(sentAt)
		out = append(out, d)
	}
	return out, rows.Err()
}
