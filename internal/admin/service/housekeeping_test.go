package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	user := f.seedUser(t, "pat@acme.test", "Pat", domain.RolePM, "")

	session := func(expires time.Time, revoked bool) string {
		s := domain.Session{
			ID:        idx.New().String(),
			UserID:    user.ID,
			ExpiresAt: expires,
			IPAddress: "unknown",
			UserAgent: "unknown",
			CreatedAt: now,
		}
		require.NoError(t, f.store.Sessions().CreateSession(f.ctx, s))
		if revoked {
			require.NoError(t, f.store.Sessions().RevokeSession(f.ctx, s.ID, now))
		}
		return s.ID
	}
	live := session(now.Add(time.Hour), false)
	expired := session(now.Add(-time.Minute), false)
	revoked := session(now.Add(time.Hour), true)

	token := func(expires time.Time) string {
		hash := idx.New().String()
		require.NoError(t, f.store.ImpersonationTokens().CreateImpersonationToken(f.ctx, domain.ImpersonationToken{
			ID:           idx.New().String(),
			TokenHash:    hash,
			SuperAdminID: f.admin.User.ID,
			TargetUserID: user.ID,
			ExpiresAt:    expires,
			CreatedAt:    now,
		}))
		return hash
	}
	recentlyExpired := token(now.Add(-time.Hour))
	longExpired := token(now.Add(-48 * time.Hour))

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	hk.Now = f.clock.Now
	require.Equal(t, time.Hour, hk.Interval)
	require.Equal(t, 2, hk.cleanup(f.ctx))

	_, err := f.store.Sessions().GetSession(f.ctx, live)
	require.NoError(t, err)
	_, err = f.store.Sessions().GetSession(f.ctx, expired)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Sessions().GetSession(f.ctx, revoked)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.store.ImpersonationTokens().GetImpersonationTokenByHash(f.ctx, recentlyExpired)
	require.NoError(t, err)
	_, err = f.store.ImpersonationTokens().GetImpersonationTokenByHash(f.ctx, longExpired)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingKeepsConsumedImpersonationTokens(t *testing.T) {
	f := newFixture(t)
	target := f.seedUser(t, "pm@acme.test", "Pat", domain.RolePM, "")

	issued, err := f.impersonation.Issue(f.ctx, f.admin, target.ID)
	require.NoError(t, err)
	_, err = f.impersonation.Consume(f.ctx, issued.Token)
	require.NoError(t, err)

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	hk.Now = f.clock.Now

	f.clock.Advance(time.Minute)
	require.Equal(t, 2, hk.cleanup(f.ctx))
	_, err = f.impersonation.Consume(f.ctx, issued.Token)
	require.ErrorIs(t, err, ErrAlreadyUsed)

	// Still used, not expired or unknown, well past the retention window.
	f.clock.Advance(72 * time.Hour)
	require.Equal(t, 2, hk.cleanup(f.ctx))
	_, err = f.impersonation.Consume(f.ctx, issued.Token)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
