package httpx

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
)

// WithUserID records the authenticated user on the request context so the
// per-user rate limiter can key on it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the user set by WithUserID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// UserIDFromRequest is UserIDFromContext for a request.
func UserIDFromRequest(r *http.Request) string {
	v, _ := UserIDFromContext(r.Context())
	return v
}
