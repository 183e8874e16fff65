package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

type ImpersonationHandler struct {
	ImpersonationService *service.ImpersonationService
}

// HandleIssue godoc
//
//	@Summary		Impersonate a user
//	@Description	Issues a single-use magic link into the main application, valid for one hour.
//	@Tags			Impersonation
//	@Produce		json
//	@Param			id	path		string	true	"Target user ID"
//	@Success		201	{object}	adminsdk.Response{data=adminsdk.ImpersonationResponse}
//	@Failure		403	{object}	adminsdk.ErrorResponse	"Target is a super admin"
//	@Failure		404	{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/users/{id}/impersonate [post].
func (h *ImpersonationHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	issued, err := h.ImpersonationService.Issue(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, adminsdk.ImpersonationResponse{
		Token:      issued.Token,
		Link:       issued.Link,
		ExpiresAt:  issued.ExpiresAt,
		TargetUser: toUser(issued.TargetUser),
	})
}

// HandleConsume godoc
//
//	@Summary		Redeem an impersonation token
//	@Description	Called by the main application. Each token succeeds exactly once.
//	@Tags			Impersonation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.ConsumeImpersonationRequest	true	"Token from the magic link"
//	@Success		200		{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure		400		{object}	adminsdk.ErrorResponse	"invalid_token, expired or already_used"
//	@Router			/v1/impersonation/consume [post].
func (h *ImpersonationHandler) HandleConsume(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ConsumeImpersonationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	user, err := h.ImpersonationService.Consume(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(user))
}
