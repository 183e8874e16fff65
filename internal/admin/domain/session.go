package domain

import "time"

// Session is a server-side record backing a signed session cookie. Revoking
// the row invalidates the cookie even though its signature stays valid.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Caller is the resolved identity of whoever issued a request. It is built
// once per request and handed to every service operation.
type Caller struct {
	User      User
	SessionID string
	IPAddress string
	UserAgent string
}

// IsZero reports whether no session was resolved.
func (c Caller) IsZero() bool { return c.User.ID == "" }

// Anonymous builds a caller for public endpoints that still need request
// provenance for audit entries.
func Anonymous(ip, userAgent string) Caller {
	return Caller{IPAddress: ip, UserAgent: userAgent}
}
