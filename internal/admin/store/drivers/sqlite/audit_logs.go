package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

type auditLogsRepo struct {
	q querier
}

func (r *auditLogsRepo) AppendAuditLog(ctx context.Context, l domain.AuditLog) error {
	metadata := []byte("{}")
	if l.Metadata != nil {
		raw, err := json.Marshal(l.Metadata)
		if err != nil {
			return fmt.Errorf("encode %s metadata: %w", l.Action, err)
		}
		metadata = raw
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, action, performed_by, target_type, target_id, target_name,
			metadata, ip_address, user_agent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, string(l.Action), l.PerformedBy, string(l.Target.Type), l.Target.ID, l.Target.Name,
		string(metadata), l.IPAddress, l.UserAgent, millis(l.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *auditLogsRepo) ListAuditLogs(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.TargetType != "" {
		where = append(where, "a.target_type = ?")
		args = append(args, string(f.TargetType))
	}
	if f.TargetID != "" {
		where = append(where, "a.target_id = ?")
		args = append(args, f.TargetID)
	}

	query := `
		SELECT a.id, a.action, a.performed_by, a.target_type, a.target_id, a.target_name,
		       a.metadata, a.ip_address, a.user_agent, a.created_at,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.performed_by`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e                  domain.AuditEntry
			action, targetType string
			metadata           string
			createdAt          int64
		)
		if err := rows.Scan(
			&e.ID, &action, &e.PerformedBy, &targetType, &e.Target.ID, &e.Target.Name,
			&metadata, &e.IPAddress, &e.UserAgent, &createdAt,
			&e.PerformerName, &e.PerformerEmail,
		); err != nil {
			return nil, err
		}

		e.Action = domain.AuditAction(action)
		e.Target.Type = domain.TargetType(targetType)
		e.CreatedAt = fromMillis(createdAt)
		if e.Metadata, err = domain.DecodeAuditMetadata(e.Action, []byte(metadata)); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
