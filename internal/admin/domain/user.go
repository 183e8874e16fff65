package domain

import (
	"strings"
	"time"
)

type User struct {
	ID             string
	Email          string // always lower-cased
	Name           string
	PasswordHash   string // argon2 encoded, empty until a password is set
	Role           Role
	OrganizationID string // empty until the user joins an organization
	SupplierID     string
	IsSuspended    bool
	EmailVerified  bool
	MFASecret      *string    // base32 TOTP secret (nullable)
	MFAEnabledAt   *time.Time // set once enrollment is verified
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }

func (u User) MFAEnabled() bool { return u.MFAEnabledAt != nil }

// NormalizeEmail lower-cases and trims an address so comparisons and the
// UNIQUE index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two addresses case-insensitively.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}

// UserSearchResult is a user row enriched with the organization the user
// belongs to, either directly or through their first membership.
type UserSearchResult struct {
	ID               string
	Email            string
	Name             string
	Role             Role
	IsSuspended      bool
	OrganizationID   string
	OrganizationName string
	CreatedAt        time.Time
}
