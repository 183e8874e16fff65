package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

type FeatureFlagHandler struct {
	FeatureFlagService *service.FeatureFlagService
}

// HandleList godoc
//
//	@Summary	List feature flags
//	@Tags		Feature Flags
//	@Produce	json
//	@Success	200	{object}	adminsdk.Response{data=[]adminsdk.FeatureFlag}
//	@Failure	401	{object}	adminsdk.ErrorResponse
//	@Failure	403	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/feature-flags [get].
func (h *FeatureFlagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	flags, err := h.FeatureFlagService.List(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.FeatureFlag, 0, len(flags))
	for _, f := range flags {
		out = append(out, toFeatureFlag(f))
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Create a feature flag
//	@Description	New flags start disabled.
//	@Tags			Feature Flags
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateFeatureFlagRequest	true	"Flag"
//	@Success		201		{object}	adminsdk.Response{data=adminsdk.FeatureFlag}
//	@Failure		400		{object}	adminsdk.ErrorResponse	"Validation failed or key_taken"
//	@Security		SessionCookie
//	@Router			/v1/feature-flags [post].
func (h *FeatureFlagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.CreateFeatureFlagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	flag, err := h.FeatureFlagService.Create(r.Context(), callerFrom(r), service.CreateFeatureFlagInput{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toFeatureFlag(flag))
}

// HandleToggle godoc
//
//	@Summary	Switch a feature flag on or off globally
//	@Tags		Feature Flags
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Flag ID"
//	@Param		request	body		adminsdk.ToggleFeatureFlagRequest	true	"Global switch"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.FeatureFlag}
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/feature-flags/{id}/enabled [put].
func (h *FeatureFlagHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ToggleFeatureFlagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	flag, err := h.FeatureFlagService.Toggle(r.Context(), callerFrom(r), r.PathValue("id"), req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toFeatureFlag(flag))
}

// HandleSetOrganizations godoc
//
//	@Summary	Enable or disable a flag for specific organizations
//	@Tags		Feature Flags
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Flag ID"
//	@Param		request	body		adminsdk.FlagOrganizationsRequest	true	"Organizations"
//	@Success	200		{object}	adminsdk.Response{data=adminsdk.FeatureFlag}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/feature-flags/{id}/organizations [put].
func (h *FeatureFlagHandler) HandleSetOrganizations(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.FlagOrganizationsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	flag, err := h.FeatureFlagService.SetForOrgs(r.Context(), callerFrom(r), r.PathValue("id"),
		req.OrganizationIDs, req.Enable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toFeatureFlag(flag))
}

// HandleEvaluate godoc
//
//	@Summary		Evaluate a feature flag
//	@Description	Unknown keys evaluate to false.
//	@Tags			Feature Flags
//	@Produce		json
//	@Param			key				path		string	true	"Flag key"
//	@Param			organizationId	query		string	false	"Organization to evaluate for"
//	@Success		200				{object}	adminsdk.Response{data=adminsdk.FlagEvaluation}
//	@Router			/v1/feature-flags/{key}/evaluate [get].
func (h *FeatureFlagHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	orgID := r.URL.Query().Get("organizationId")

	enabled, err := h.FeatureFlagService.IsEnabled(r.Context(), key, orgID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, adminsdk.FlagEvaluation{Key: key, OrganizationID: orgID, Enabled: enabled})
}
