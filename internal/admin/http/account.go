package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// BootstrapTokenHeader carries the one-time setup secret.
const BootstrapTokenHeader = "X-Bootstrap-Token"

type AccountHandler struct {
	AccountService *service.AccountService
	CookieSecure   bool
}

// HandleBootstrap creates the first super admin.
//
//	@Summary		Bootstrap the control panel
//	@Description	Creates the first SUPER_ADMIN. Only available when a bootstrap token is configured and only while no user exists.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		adminsdk.BootstrapRequest	true	"First super admin"
//	@Success		201					{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure		400					{object}	adminsdk.ErrorResponse
//	@Failure		401					{object}	adminsdk.ErrorResponse	"Invalid token or already bootstrapped"
//	@Failure		404					{object}	adminsdk.ErrorResponse	"Bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *AccountHandler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("bootstrap requested")

	// 1. Check if enabled
	if h.AccountService.BootstrapToken == "" {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Bootstrap endpoint is not enabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get(BootstrapTokenHeader)
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body
	var req adminsdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	// 4. Perform bootstrap
	user, err := h.AccountService.Bootstrap(r.Context(), token, service.BootstrapInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, toUser(user))
}

// HandleSignIn exchanges credentials for a session cookie.
//
//	@Summary		Sign in
//	@Description	Verifies email and password, plus a TOTP code when MFA is enabled, and sets the session cookie.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	adminsdk.Response{data=adminsdk.SessionResponse}
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		401		{object}	adminsdk.ErrorResponse	"invalid_credentials, mfa_required or invalid_totp_code"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"Account suspended"
//	@Failure		429		{object}	adminsdk.ErrorResponse
//	@Router			/v1/auth/sign-in [post].
func (h *AccountHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.SignInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	signed, err := h.AccountService.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		TOTPCode: req.TOTPCode,
	}, service.RequestIP(r), service.RequestUserAgent(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, signed.Token, signed.Session.ExpiresAt, h.CookieSecure)
	httpx.WriteData(w, http.StatusOK, adminsdk.SessionResponse{
		User:      toUser(signed.User),
		ExpiresAt: signed.Session.ExpiresAt,
	})
}

// HandleSignOut revokes the current session.
//
//	@Summary	Sign out
//	@Tags		Account
//	@Produce	json
//	@Success	200	{object}	adminsdk.Response
//	@Failure	401	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/auth/sign-out [post].
func (h *AccountHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.AccountService.SignOut(r.Context(), callerFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}

	clearSessionCookies(w, h.CookieSecure)
	httpx.WriteData(w, http.StatusOK, nil)
}

// HandleMe returns the signed-in user.
//
//	@Summary	Current user
//	@Tags		Account
//	@Produce	json
//	@Success	200	{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure	401	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/auth/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.AccountService.Me(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(user))
}
