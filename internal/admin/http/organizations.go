package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

type OrganizationHandler struct {
	OrganizationService *service.OrganizationService
}

// HandleCreate godoc
//
//	@Summary		Create an organization
//	@Description	Starts the organization in TRIAL. A pmEmail with an account is attached as PM; otherwise an invitation is issued.
//	@Tags			Organizations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateOrganizationRequest	true	"Organization"
//	@Success		201		{object}	adminsdk.Response{data=adminsdk.CreatedOrganization}
//	@Failure		400		{object}	adminsdk.ErrorResponse	"Validation failed or slug_taken"
//	@Failure		401		{object}	adminsdk.ErrorResponse
//	@Failure		403		{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/organizations [post].
func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.CreateOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	created, err := h.OrganizationService.Create(r.Context(), callerFrom(r), service.CreateOrganizationInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Plan:         domain.Plan(req.Plan),
		Industry:     req.Industry,
		Size:         req.Size,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Website:      req.Website,
		PMEmail:      req.PMEmail,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := adminsdk.CreatedOrganization{Organization: toOrganization(created.Organization)}
	if created.PMInvitation != nil {
		issued := toIssuedInvitation(*created.PMInvitation)
		resp.PMInvitation = &issued
	}
	httpx.WriteData(w, http.StatusCreated, resp)
}

// HandleList godoc
//
//	@Summary	List organizations
//	@Tags		Organizations
//	@Produce	json
//	@Param		status	query		string	false	"TRIAL, ACTIVE, SUSPENDED, CANCELLED or DELINQUENT"
//	@Param		plan	query		string	false	"FREE, STARTER, PROFESSIONAL or ENTERPRISE"
//	@Param		search	query		string	false	"Matches name or slug"
//	@Success	200		{object}	adminsdk.Response{data=[]adminsdk.OrganizationSummary}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations [get].
func (h *OrganizationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgs, err := h.OrganizationService.List(r.Context(), callerFrom(r), domain.OrganizationFilter{
		Status: domain.OrganizationStatus(q.Get("status")),
		Plan:   domain.Plan(q.Get("plan")),
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.OrganizationSummary, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, adminsdk.OrganizationSummary{
			Organization: toOrganization(o.Organization),
			MemberCount:  o.MemberCount,
		})
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get an organization with its members
//	@Tags		Organizations
//	@Produce	json
//	@Param		id	path		string	true	"Organization ID"
//	@Success	200	{object}	adminsdk.Response{data=adminsdk.OrganizationDetail}
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id} [get].
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.OrganizationService.Get(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toOrganizationDetail(detail))
}

// HandleUpdate godoc
//
//	@Summary	Update organization profile fields
//	@Tags		Organizations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Organization ID"
//	@Param		request	body		adminsdk.UpdateOrganizationRequest	true	"Fields to change"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.Organization}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id} [patch].
func (h *OrganizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.UpdateOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	org, err := h.OrganizationService.Update(r.Context(), callerFrom(r), r.PathValue("id"), service.OrganizationPatch{
		Name:         req.Name,
		Industry:     req.Industry,
		Size:         req.Size,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Website:      req.Website,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toOrganization(org))
}

// HandleSuspend godoc
//
//	@Summary	Suspend an organization
//	@Tags		Organizations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Organization ID"
//	@Param		request	body		adminsdk.SuspendOrganizationRequest	true	"Reason"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.Organization}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id}/suspend [post].
func (h *OrganizationHandler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.SuspendOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	org, err := h.OrganizationService.Suspend(r.Context(), callerFrom(r), r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toOrganization(org))
}

// HandleActivate godoc
//
//	@Summary	Activate an organization
//	@Tags		Organizations
//	@Produce	json
//	@Param		id	path		string	true	"Organization ID"
//	@Success	200	{object}	adminsdk.Response{data=adminsdk.Organization}
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id}/activate [post].
func (h *OrganizationHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	org, err := h.OrganizationService.Activate(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toOrganization(org))
}

// HandleUpdatePlan godoc
//
//	@Summary	Change an organization's plan
//	@Tags		Organizations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Organization ID"
//	@Param		request	body		adminsdk.UpdatePlanRequest	true	"Plan and monthly revenue"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.Organization}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/organizations/{id}/plan [put].
func (h *OrganizationHandler) HandleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.UpdatePlanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	org, err := h.OrganizationService.UpdatePlan(r.Context(), callerFrom(r), r.PathValue("id"),
		domain.Plan(req.Plan), req.MonthlyRevenue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toOrganization(org))
}
