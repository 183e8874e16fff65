package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

// AdminInviteHandler serves the super admin invitation flow.
type AdminInviteHandler struct {
	InvitationService *service.InvitationService
}

// HandleIssue godoc
//
//	@Summary		Invite a super admin
//	@Description	Creates a 7 day invitation and emails the link. The raw token is only returned here.
//	@Tags			Admin Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.SuperAdminInviteRequest	true	"Invitee"
//	@Success		201		{object}	adminsdk.Response{data=adminsdk.IssuedSuperAdminInvite}
//	@Failure		400		{object}	adminsdk.ErrorResponse	"Validation failed or already a super admin"
//	@Failure		401		{object}	adminsdk.ErrorResponse
//	@Failure		403		{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/admin-invites [post].
func (h *AdminInviteHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.SuperAdminInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	issued, err := h.InvitationService.IssueSuperAdminInvite(r.Context(), callerFrom(r), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, adminsdk.IssuedSuperAdminInvite{
		Invitation: toSuperAdminInvitation(issued.Invitation, callerFrom(r).User.Name),
		Token:      issued.Token,
		Link:       issued.Link,
	})
}

// HandleList godoc
//
//	@Summary	List pending super admin invitations
//	@Tags		Admin Invites
//	@Produce	json
//	@Success	200	{object}	adminsdk.Response{data=[]adminsdk.SuperAdminInvitation}
//	@Failure	401	{object}	adminsdk.ErrorResponse
//	@Failure	403	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/admin-invites [get].
func (h *AdminInviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InvitationService.ListPendingSuperAdminInvites(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.SuperAdminInvitation, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toSuperAdminInvitation(inv.SuperAdminInvitation, inv.InviterName))
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleRevoke godoc
//
//	@Summary	Revoke a super admin invitation
//	@Tags		Admin Invites
//	@Produce	json
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	adminsdk.Response
//	@Failure	400	{object}	adminsdk.ErrorResponse	"Already accepted or revoked"
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/admin-invites/{id}/revoke [post].
func (h *AdminInviteHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.InvitationService.RevokeSuperAdminInvite(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, nil)
}

// HandleValidate godoc
//
//	@Summary		Validate a super admin invitation
//	@Description	Read-only check before the sign-up form. Returns email_taken when the invitee should sign in and finalize instead.
//	@Tags			Admin Invites
//	@Produce		json
//	@Param			token	query		string	true	"Invitation token"
//	@Success		200		{object}	adminsdk.Response{data=adminsdk.SuperAdminInviteDetails}
//	@Failure		400		{object}	adminsdk.InvalidLinkResponse	"expired, revoked, already_used or email_taken"
//	@Failure		404		{object}	adminsdk.InvalidLinkResponse
//	@Router			/v1/admin-invites/validate [get].
func (h *AdminInviteHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	details, err := h.InvitationService.ValidateSuperAdminInvite(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeInvalidLink(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, adminsdk.SuperAdminInviteDetails{
		Valid:       true,
		Email:       details.Email,
		InviterName: details.InviterName,
		ExpiresAt:   details.ExpiresAt,
	})
}

// HandleAcceptNew godoc
//
//	@Summary	Accept a super admin invitation with a new account
//	@Tags		Admin Invites
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.AcceptInviteNewRequest	true	"Token and new account"
//	@Success	201		{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Router		/v1/admin-invites/accept [post].
func (h *AdminInviteHandler) HandleAcceptNew(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AcceptInviteNewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	user, err := h.InvitationService.AcceptSuperAdminInviteNew(r.Context(), anonymous(r), req.Token,
		service.NewAccountInput{Name: req.Name, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toUser(user))
}

// HandleAcceptExisting godoc
//
//	@Summary		Finalize a super admin invitation
//	@Description	Elevates the signed-in account. Its email must match the invitation.
//	@Tags			Admin Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.AcceptInviteRequest	true	"Invitation token"
//	@Success		200		{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure		400		{object}	adminsdk.ErrorResponse	"email_mismatch, expired, revoked or already_used"
//	@Failure		401		{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/admin-invites/accept [put].
func (h *AdminInviteHandler) HandleAcceptExisting(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	user, err := h.InvitationService.AcceptSuperAdminInviteExisting(r.Context(), callerFrom(r), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(user))
}
