package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrSuspended       = fmt.Errorf("account suspended: %w", ErrForbidden)

	ErrNotFound             = errors.New("not found")
	ErrInvitationNotFound   = fmt.Errorf("invitation %w", ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrFlagNotFound         = fmt.Errorf("feature flag %w", ErrNotFound)

	ErrAlreadyUsed      = errors.New("already used")
	ErrRevoked          = errors.New("revoked")
	ErrExpired          = errors.New("expired")
	ErrEmailMismatch    = errors.New("signed-in email does not match the invitation")
	ErrEmailTaken       = errors.New("an account already exists for this email")
	ErrSlugTaken        = errors.New("slug already taken")
	ErrValidationFailed = errors.New("validation failed")

	ErrInvalidToken           = errors.New("invalid token")
	ErrCannotImpersonateAdmin = errors.New("super admins cannot be impersonated")
	ErrAlreadySuperAdmin      = errors.New("user is already a super admin")
	ErrAlreadyMember          = errors.New("user is already a member of this organization")
	ErrFlagKeyTaken           = errors.New("feature flag key already taken")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrMFARequired            = errors.New("a TOTP code is required")
	ErrInvalidTOTPCode        = errors.New("invalid TOTP code")

	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrMFANotEnrolled        = errors.New("MFA not enrolled")
	ErrMFANotEnabled         = errors.New("MFA not enabled for this user")
	ErrMFAAlreadyEnabled     = errors.New("MFA already enabled for this user")
)

// ValidationError describes which input fields were rejected. It matches
// ErrValidationFailed with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// invalidField builds a ValidationError for a single field.
func invalidField(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
