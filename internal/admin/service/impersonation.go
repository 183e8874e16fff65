package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// ImpersonationService mints single-use magic links that let a super admin
// sign in to the main application as another user.
type ImpersonationService struct {
	Store      store.Store
	Audit      *AuditRecorder
	MainAppURL string
	Now        func() time.Time
}

type IssuedImpersonation struct {
	Token      string
	Link       string
	ExpiresAt  time.Time
	TargetUser domain.User
}

// Issue creates an impersonation token for targetUserID. Super admins can
// never be impersonated and no row is written for them.
func (s *ImpersonationService) Issue(
	ctx context.Context,
	caller domain.Caller,
	targetUserID string,
) (IssuedImpersonation, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize
	if err := RequireSuperAdmin(caller); err != nil {
		return IssuedImpersonation{}, err
	}

	// 2. Check the target
	if !idx.Valid(targetUserID) {
		return IssuedImpersonation{}, ErrUserNotFound
	}
	target, err := s.Store.Users().GetUserByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return IssuedImpersonation{}, ErrUserNotFound
		}
		log.Error("failed to load impersonation target", slog.Any("error", err))
		return IssuedImpersonation{}, err
	}
	if target.IsSuperAdmin() {
		log.Warn("refused to impersonate a super admin",
			slog.String("target_user_id", target.ID),
			slog.String("requested_by", caller.User.ID),
		)
		return IssuedImpersonation{}, ErrCannotImpersonateAdmin
	}

	// 3. Mint and persist the fingerprint
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate impersonation token", slog.Any("error", err))
		return IssuedImpersonation{}, err
	}
	now := clock(s.Now)
	row := domain.ImpersonationToken{
		ID:           idx.New().String(),
		TokenHash:    cryptox.FingerprintToken(token),
		SuperAdminID: caller.User.ID,
		TargetUserID: target.ID,
		ExpiresAt:    now.Add(domain.ImpersonationTTL),
		CreatedAt:    now,
	}
	if err := s.Store.ImpersonationTokens().CreateImpersonationToken(ctx, row); err != nil {
		log.Error("failed to store impersonation token", slog.Any("error", err))
		return IssuedImpersonation{}, err
	}

	// 4. Audit
	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetUser, ID: target.ID, Name: target.Email},
		Metadata: domain.UserImpersonated{TargetUser: target.Email},
	})

	log.Info("impersonation token issued",
		slog.String("target_user_id", target.ID),
		slog.String("issued_by", caller.User.ID),
	)
	return IssuedImpersonation{
		Token:      token,
		Link:       strings.TrimRight(s.MainAppURL, "/") + "/api/auth/impersonate?token=" + url.QueryEscape(token),
		ExpiresAt:  row.ExpiresAt,
		TargetUser: target,
	}, nil
}

// Consume redeems a token exactly once and returns the user to sign in as.
func (s *ImpersonationService) Consume(ctx context.Context, token string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.User{}, ErrInvalidToken
	}
	hash := cryptox.FingerprintToken(token)
	now := clock(s.Now)

	// 1. Single conditional update; only one concurrent caller can win
	row, err := s.Store.ImpersonationTokens().ConsumeImpersonationToken(ctx, hash, now)
	if errors.Is(err, store.ErrStateChanged) {
		return domain.User{}, s.classify(ctx, hash, now)
	}
	if err != nil {
		log.Error("failed to consume impersonation token", slog.Any("error", err))
		return domain.User{}, err
	}

	// 2. Resolve the target
	target, err := s.Store.Users().GetUserByID(ctx, row.TargetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		log.Error("failed to load impersonation target", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("impersonation token consumed",
		slog.String("target_user_id", target.ID),
		slog.String("issued_by", row.SuperAdminID),
	)
	return target, nil
}

// classify explains why a consume matched no row.
func (s *ImpersonationService) classify(ctx context.Context, hash string, now time.Time) error {
	log := slogx.FromContext(ctx)

	row, err := s.Store.ImpersonationTokens().GetImpersonationTokenByHash(ctx, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("impersonation consume with unknown token")
		return ErrInvalidToken
	case err != nil:
		log.Error("failed to load impersonation token", slog.Any("error", err))
		return err
	case row.UsedAt != nil:
		log.Warn("impersonation token replayed", slog.String("token_id", row.ID))
		return ErrAlreadyUsed
	case !now.Before(row.ExpiresAt):
		log.Warn("impersonation token expired", slog.String("token_id", row.ID))
		return ErrExpired
	}
	// Lost a race with a concurrent consume between the two statements.
	return ErrAlreadyUsed
}
