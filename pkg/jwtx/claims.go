package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long an operator session cookie stays valid
// when the service is not configured otherwise.
const DefaultSessionTTL = 12 * time.Hour

// Claims are the session cookie claims. The token only names the session;
// role and suspension state are always read fresh from the store.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, primary key of the sessions row.
	SID string `json:"sid"`

	// Authentication Methods Reference ["pwd","otp"]
	AMR []string `json:"amr,omitempty"`
}

// NewSessionClaims builds claims for a freshly created session.
func NewSessionClaims(
	subject, sid string,
	amr []string,
	issuer string,
	audience []string,
	issuedAt, expiresAt time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        NewJTI(),
		},
		SID: sid,
		AMR: amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateSession makes sure the claims actually identify a session.
func (c *Claims) ValidateSession() error {
	if c.Subject == "" || c.SID == "" {
		return ErrInvalidClaim
	}
	return nil
}
