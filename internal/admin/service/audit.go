package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// FailureReporter is told about audit rows that could not be written. The
// primary mutation has already committed by then.
type FailureReporter interface {
	OnAuditFailure(ctx context.Context, entry domain.AuditLog, err error)
}

// FailureReporterFunc adapts a function to FailureReporter.
type FailureReporterFunc func(ctx context.Context, entry domain.AuditLog, err error)

func (f FailureReporterFunc) OnAuditFailure(ctx context.Context, entry domain.AuditLog, err error) {
	f(ctx, entry, err)
}

// AuditEntry is what an operation asks the recorder to append.
type AuditEntry struct {
	// PerformedBy overrides the caller as the actor, e.g. the inviter when a
	// new account accepts an invitation.
	PerformedBy string
	Target      domain.AuditTarget
	Metadata    domain.AuditMetadata
}

type AuditRecorder struct {
	Store    store.Store
	Reporter FailureReporter
	Now      func() time.Time
}

// Record appends an audit row after the primary write committed. It never
// returns an error: failures are logged and handed to the Reporter.
func (r *AuditRecorder) Record(ctx context.Context, caller domain.Caller, e AuditEntry) {
	if r == nil {
		return
	}

	performedBy := e.PerformedBy
	if performedBy == "" {
		performedBy = caller.User.ID
	}

	entry := domain.AuditLog{
		ID:          idx.New().String(),
		Action:      e.Metadata.Action(),
		PerformedBy: performedBy,
		Target:      e.Target,
		Metadata:    e.Metadata,
		IPAddress:   orUnknown(caller.IPAddress),
		UserAgent:   orUnknown(caller.UserAgent),
		CreatedAt:   clock(r.Now),
	}

	if err := r.Store.AuditLogs().AppendAuditLog(ctx, entry); err != nil {
		slogx.FromContext(ctx).Error("failed to write audit log",
			slog.String("action", string(entry.Action)),
			slog.String("target_type", string(entry.Target.Type)),
			slog.String("target_id", entry.Target.ID),
			slog.Any("error", err),
		)
		if r.Reporter != nil {
			r.Reporter.OnAuditFailure(ctx, entry, err)
		}
	}
}

// List returns audit entries newest first, joined with their performer.
func (r *AuditRecorder) List(
	ctx context.Context,
	caller domain.Caller,
	filter domain.AuditFilter,
) ([]domain.AuditEntry, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if filter.TargetType != "" && !filter.TargetType.Valid() {
		return nil, invalidField("targetType", "must be one of ORGANIZATION USER INVITATION FEATURE_FLAG")
	}

	filter.Limit = clampLimit(filter.Limit, defaultAuditLimit, maxAuditLimit)

	entries, err := r.Store.AuditLogs().ListAuditLogs(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list audit logs", slog.Any("error", err))
		return nil, err
	}
	return entries, nil
}
