package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// Session cookie names. The __Secure- variant is set over HTTPS and checked
// first.
const (
	SecureSessionCookie = "__Secure-godview.session_token"
	SessionCookie       = "godview.session_token"
)

// SessionCookieNames lists the cookies the guard accepts, in lookup order.
var SessionCookieNames = []string{SecureSessionCookie, SessionCookie}

// Guard turns request credentials into a Caller. It is the only place that
// reads cookies; services receive the Caller by parameter.
type Guard struct {
	Store    store.Store
	Verifier jwtx.Verifier
	Now      func() time.Time
}

// Resolve authenticates the request. Any missing, forged, expired or
// revoked credential yields ErrUnauthenticated.
func (g *Guard) Resolve(ctx context.Context, r *http.Request) (domain.Caller, error) {
	log := slogx.FromContext(ctx)

	// 1. Read the cookie
	token, ok := httpx.CookieValue(r, SessionCookieNames...)
	if !ok {
		return domain.Caller{}, ErrUnauthenticated
	}

	// 2. Verify the signature and standard claims
	claims, err := g.Verifier.Verify(token)
	if err != nil {
		log.Warn("rejected session token", slog.Any("error", err))
		return domain.Caller{}, ErrUnauthenticated
	}
	if err := claims.ValidateSession(); err != nil {
		log.Warn("session token missing subject or sid")
		return domain.Caller{}, ErrUnauthenticated
	}

	// 3. The session row must still be live
	session, err := g.Store.Sessions().GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("session token references unknown session", slog.String("sid", claims.SID))
			return domain.Caller{}, ErrUnauthenticated
		}
		log.Error("failed to load session", slog.Any("error", err))
		return domain.Caller{}, err
	}
	if session.UserID != claims.Subject || !session.Active(clock(g.Now)) {
		log.Warn("session revoked or expired", slog.String("sid", session.ID))
		return domain.Caller{}, ErrUnauthenticated
	}

	// 4. Load the user fresh so role and suspension changes apply at once
	user, err := g.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Caller{}, ErrUnauthenticated
		}
		log.Error("failed to load session user", slog.Any("error", err))
		return domain.Caller{}, err
	}

	return domain.Caller{
		User:      user,
		SessionID: session.ID,
		IPAddress: RequestIP(r),
		UserAgent: RequestUserAgent(r),
	}, nil
}

// RequestIP returns the client address used for audit provenance.
func RequestIP(r *http.Request) string {
	return orUnknown(httpx.IPKeyExtractor(r))
}

// RequestUserAgent returns the User-Agent header or "unknown".
func RequestUserAgent(r *http.Request) string {
	return orUnknown(r.UserAgent())
}

// RequireSession fails with ErrUnauthenticated when no session was resolved.
func RequireSession(caller domain.Caller) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireSuperAdmin admits only unsuspended SUPER_ADMIN callers.
func RequireSuperAdmin(caller domain.Caller) error {
	if err := RequireSession(caller); err != nil {
		return err
	}
	if !caller.User.IsSuperAdmin() {
		return ErrForbidden
	}
	if caller.User.IsSuspended {
		return ErrSuspended
	}
	return nil
}
