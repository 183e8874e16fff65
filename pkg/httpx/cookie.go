package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// CookieValue returns the value of the first non-empty cookie in names.
func CookieValue(r *http.Request, names ...string) (string, bool) {
	for _, name := range names {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			continue
		}
		return c.Value, true
	}
	return "", false
}

// RequireCookie is the cheap edge gate: it only checks that one of the
// session cookies is present. Whether the session is real, and what the
// caller may do, is decided later by the session guard.
func RequireCookie(names ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CookieValue(r, names...); !ok {
				slogx.FromContext(r.Context()).Debug("request without session cookie rejected at edge")
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "Sign in required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
