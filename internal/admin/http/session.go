package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

type callerKey struct{}

// RequireCaller resolves the session through the guard and stores the
// caller on the request context. Failures are written with the same error
// table as every handler.
func RequireCaller(guard *service.Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := guard.Resolve(r.Context(), r)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			ctx = httpx.WithUserID(ctx, caller.User.ID)
			ctx = slogx.With(ctx, "user_id", caller.User.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerFrom returns the caller set by RequireCaller, or the zero caller.
// Services reject the zero caller with ErrUnauthenticated.
func callerFrom(r *http.Request) domain.Caller {
	caller, _ := r.Context().Value(callerKey{}).(domain.Caller)
	return caller
}

// anonymous is the caller for public endpoints. It carries only request
// provenance for audit entries.
func anonymous(r *http.Request) domain.Caller {
	return domain.Anonymous(service.RequestIP(r), service.RequestUserAgent(r))
}

func sessionCookieName(secure bool) string {
	if secure {
		return service.SecureSessionCookie
	}
	return service.SessionCookie
}

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(secure),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both cookie names so a downgrade between
// HTTP and HTTPS deployments cannot leave a stale session behind.
func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range service.SessionCookieNames {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure || name == service.SecureSessionCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
