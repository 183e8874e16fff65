package adminsdk

import (
	"errors"
	"fmt"
)

// Error codes returned in ErrorResponse.Error.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeValidationFailed  = "validation_failed"
	CodeUnauthenticated   = "unauthenticated"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidCredential = "invalid_credentials"
	CodeMFARequired       = "mfa_required"
	CodeInvalidTOTPCode   = "invalid_totp_code"
	CodeSuspended         = "suspended"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeAlreadyUsed       = "already_used"
	CodeRevoked           = "revoked"
	CodeExpired           = "expired"
	CodeInvalidToken      = "invalid_token"
	CodeEmailMismatch     = "email_mismatch"
	CodeEmailTaken        = "email_taken"
	CodeSlugTaken         = "slug_taken"
	CodeKeyTaken          = "key_taken"
	CodeAlreadySuperAdmin = "already_super_admin"
	CodeAlreadyMember     = "already_member"
	CodeRateLimited       = "rate_limited"
	CodeUnexpected        = "unexpected"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("adminsdk: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("adminsdk: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// HasCode reports whether err is an *APIError with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
