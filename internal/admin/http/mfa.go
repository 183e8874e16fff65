package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll godoc
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret for the signed-in user. MFA is enforced only after a code is verified.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	adminsdk.Response{data=adminsdk.TOTPEnrollResponse}
//	@Failure		400	{object}	adminsdk.ErrorResponse	"MFA already enabled"
//	@Failure		401	{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.MFAService.EnrollTOTP(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, adminsdk.TOTPEnrollResponse{
		Secret:  enrollment.Secret,
		URL:     enrollment.URL,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleVerify godoc
//
//	@Summary	Verify TOTP enrollment
//	@Tags		MFA
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.TOTPCodeRequest	true	"Code from the authenticator app"
//	@Success	200		{object}	adminsdk.Response
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	401		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	if err := h.MFAService.VerifyTOTP(r.Context(), callerFrom(r), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, nil)
}

// HandleRemove godoc
//
//	@Summary	Disable TOTP
//	@Tags		MFA
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.TOTPCodeRequest	true	"Current code"
//	@Success	200		{object}	adminsdk.Response
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	401		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/mfa/totp [delete].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	if err := h.MFAService.DisableTOTP(r.Context(), callerFrom(r), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, nil)
}
