package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable maps service errors to responses. Order matters: wrapped
// sentinels precede the ones they wrap.
var errorTable = []errorMapping{
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "Sign in required"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{service.ErrMFARequired, http.StatusUnauthorized, "mfa_required", "A TOTP code is required for this account"},
	{service.ErrInvalidTOTPCode, http.StatusUnauthorized, "invalid_totp_code", "Invalid TOTP code"},
	{service.ErrBootstrapUnauthorized, http.StatusUnauthorized, "unauthorized", "Invalid bootstrap token"},
	{service.ErrBootstrapAlready, http.StatusUnauthorized, "unauthorized", "System has already been bootstrapped"},

	{service.ErrSuspended, http.StatusForbidden, "suspended", "This account is suspended"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "Super admin access required"},
	{service.ErrCannotImpersonateAdmin, http.StatusForbidden, "forbidden", "Super admins cannot be impersonated"},

	{service.ErrInvitationNotFound, http.StatusNotFound, "not_found", "Invitation not found"},
	{service.ErrOrganizationNotFound, http.StatusNotFound, "not_found", "Organization not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "not_found", "User not found"},
	{service.ErrFlagNotFound, http.StatusNotFound, "not_found", "Feature flag not found"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "Not found"},

	{service.ErrAlreadyUsed, http.StatusBadRequest, "already_used", "This link has already been used"},
	{service.ErrRevoked, http.StatusBadRequest, "revoked", "This invitation has been revoked"},
	{service.ErrExpired, http.StatusBadRequest, "expired", "This link has expired"},
	{service.ErrInvalidToken, http.StatusBadRequest, "invalid_token", "Invalid token"},
	{service.ErrEmailMismatch, http.StatusBadRequest, "email_mismatch", "Signed-in email does not match the invitation"},
	{service.ErrEmailTaken, http.StatusBadRequest, "email_taken", "An account already exists for this email"},
	{service.ErrSlugTaken, http.StatusBadRequest, "slug_taken", "Slug already taken"},
	{service.ErrFlagKeyTaken, http.StatusBadRequest, "key_taken", "Feature flag key already taken"},
	{service.ErrAlreadySuperAdmin, http.StatusBadRequest, "already_super_admin", "User is already a super admin"},
	{service.ErrAlreadyMember, http.StatusBadRequest, "already_member", "User is already a member of this organization"},
	{service.ErrMFANotEnrolled, http.StatusBadRequest, "mfa_not_enrolled", "Start TOTP enrollment first"},
	{service.ErrMFANotEnabled, http.StatusBadRequest, "mfa_not_enabled", "MFA is not enabled"},
	{service.ErrMFAAlreadyEnabled, http.StatusBadRequest, "mfa_already_enabled", "MFA is already enabled"},
}

// writeError maps err through errorTable. Validation failures carry their
// field detail; anything unmapped is logged and reported as unexpected.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:   "validation_failed",
			Message: "Some fields are invalid",
			Fields:  verr.Fields,
		})
		return
	}
	if errors.Is(err, service.ErrValidationFailed) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if m, ok := lookupError(err); ok {
		httpx.WriteError(w, m.status, m.code, m.message)
		return
	}

	slogx.FromContext(r.Context()).Error("unexpected error",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.WriteError(w, http.StatusInternalServerError, "unexpected", "An unexpected error occurred")
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// writeInvalidLink reports why an invitation link cannot be used, with
// valid:false so a sign-up page can branch on one field. Errors that are not
// about the link itself go through writeError.
func writeInvalidLink(w http.ResponseWriter, r *http.Request, err error) {
	m, ok := lookupError(err)
	if !ok || (m.status != http.StatusBadRequest && m.status != http.StatusNotFound) {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, m.status, adminsdk.InvalidLinkResponse{Error: m.code, Message: m.message})
}

// writeBadBody reports a body that could not be decoded.
func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Debug("rejected request body", slog.Any("error", err))
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be a valid JSON object")
}

// queryInt parses an optional integer query parameter. Absent means zero,
// which services treat as their default.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Fields: map[string]string{name: "must be an integer"}}
	}
	return n, nil
}
