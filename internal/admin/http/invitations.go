package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

// InvitationHandler serves organization-scoped invitations.
type InvitationHandler struct {
	InvitationService *service.InvitationService
}

// HandleIssueOrgAdmin godoc
//
//	@Summary	Invite an organization admin
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Organization ID"
//	@Param		request	body		adminsdk.OrgAdminInviteRequest	true	"Invitee"
//	@Success	201		{object}	adminsdk.Response{data=adminsdk.IssuedInvitation}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id}/admin-invites [post].
func (h *InvitationHandler) HandleIssueOrgAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.OrgAdminInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	issued, err := h.InvitationService.IssueOrgAdminInvite(r.Context(), callerFrom(r), r.PathValue("id"),
		service.OrgAdminInviteInput{Email: req.Email, Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toIssuedInvitation(issued))
}

// HandleIssueMember godoc
//
//	@Summary		Invite an organization member
//	@Description	Role must be organization scoped. supplierId is only accepted for SUPPLIER and must belong to the organization.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Organization ID"
//	@Param			request	body		adminsdk.MemberInviteRequest	true	"Invitee"
//	@Success		201		{object}	adminsdk.Response{data=adminsdk.IssuedInvitation}
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/organizations/{id}/invitations [post].
func (h *InvitationHandler) HandleIssueMember(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.MemberInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	issued, err := h.InvitationService.IssueMemberInvite(r.Context(), callerFrom(r), r.PathValue("id"),
		service.MemberInviteInput{Email: req.Email, Role: domain.Role(req.Role), SupplierID: req.SupplierID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toIssuedInvitation(issued))
}

// HandleListForOrganization godoc
//
//	@Summary	List an organization's invitations
//	@Tags		Invitations
//	@Produce	json
//	@Param		id	path		string	true	"Organization ID"
//	@Success	200	{object}	adminsdk.Response{data=[]adminsdk.Invitation}
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id}/invitations [get].
func (h *InvitationHandler) HandleListForOrganization(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InvitationService.ListOrganizationInvitations(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.Invitation, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInvitation(inv))
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleRevoke godoc
//
//	@Summary	Revoke an organization invitation
//	@Tags		Invitations
//	@Produce	json
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	adminsdk.Response
//	@Failure	400	{object}	adminsdk.ErrorResponse
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/invitations/{id}/revoke [post].
func (h *InvitationHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.InvitationService.RevokeInvitation(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, nil)
}

// HandleValidate godoc
//
//	@Summary		Validate an organization invitation
//	@Description	accountExists tells the client whether to offer sign-in or sign-up.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Invitation token"
//	@Success		200		{object}	adminsdk.Response{data=adminsdk.InvitationDetails}
//	@Failure		400		{object}	adminsdk.InvalidLinkResponse
//	@Failure		404		{object}	adminsdk.InvalidLinkResponse
//	@Router			/v1/invitations/validate [get].
func (h *InvitationHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	details, err := h.InvitationService.ValidateInvitation(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeInvalidLink(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, adminsdk.InvitationDetails{
		Valid:            true,
		Email:            details.Email,
		OrganizationID:   details.OrganizationID,
		OrganizationName: details.OrganizationName,
		Role:             details.Role.String(),
		InviterName:      details.InviterName,
		ExpiresAt:        details.ExpiresAt,
		AccountExists:    details.AccountExists,
	})
}

// HandleAccept godoc
//
//	@Summary	Accept an invitation with the signed-in account
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.AcceptInviteRequest	true	"Invitation token"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	401		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/invitations/accept [post].
func (h *InvitationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	user, err := h.InvitationService.AcceptInvitation(r.Context(), callerFrom(r), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(user))
}

// HandleAcceptNew godoc
//
//	@Summary	Accept an invitation with a new account
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.AcceptInviteNewRequest	true	"Token and new account"
//	@Success	201		{object}	adminsdk.Response{data=adminsdk.User}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Router		/v1/invitations/accept-new [post].
func (h *InvitationHandler) HandleAcceptNew(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AcceptInviteNewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	user, err := h.InvitationService.AcceptInvitationNew(r.Context(), anonymous(r), req.Token,
		service.NewAccountInput{Name: req.Name, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toUser(user))
}
