package http

import (
	"net/http"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
)

// InsightsHandler serves the dashboard's read-only views.
type InsightsHandler struct {
	InsightsService *service.InsightsService
	AuditRecorder   *service.AuditRecorder
	Mailer          *service.Mailer
}

// HandleStats godoc
//
//	@Summary	Platform statistics
//	@Tags		Insights
//	@Produce	json
//	@Success	200	{object}	adminsdk.Response{data=adminsdk.PlatformStats}
//	@Failure	401	{object}	adminsdk.ErrorResponse
//	@Failure	403	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/stats [get].
func (h *InsightsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.InsightsService.PlatformStats(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toPlatformStats(stats))
}

// HandleGrowth godoc
//
//	@Summary		Monthly signups
//	@Description	Organizations and users created per calendar month, oldest first, zero-filled.
//	@Tags			Insights
//	@Produce		json
//	@Param			months	query		int	false	"Months to include (default 6, max 36)"
//	@Success		200		{object}	adminsdk.Response{data=[]adminsdk.GrowthPoint}
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/stats/growth [get].
func (h *InsightsHandler) HandleGrowth(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months")
	if err != nil {
		writeError(w, r, err)
		return
	}

	points, err := h.InsightsService.Growth(r.Context(), callerFrom(r), months)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.GrowthPoint, 0, len(points))
	for _, p := range points {
		out = append(out, adminsdk.GrowthPoint{Month: p.Month, Organizations: p.Organizations, Users: p.Users})
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleActivity godoc
//
//	@Summary	Recent audit activity
//	@Tags		Insights
//	@Produce	json
//	@Param		limit	query		int	false	"Entries to return (default 50, max 200)"
//	@Success	200		{object}	adminsdk.Response{data=[]adminsdk.AuditLog}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/activity [get].
func (h *InsightsHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.InsightsService.RecentActivity(r.Context(), callerFrom(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toAuditLogs(entries))
}

// HandleSearchUsers godoc
//
//	@Summary	Search users
//	@Tags		Insights
//	@Produce	json
//	@Param		q	query		string	false	"Matches name or email"
//	@Success	200	{object}	adminsdk.Response{data=[]adminsdk.UserSearchResult}
//	@Failure	400	{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/users [get].
func (h *InsightsHandler) HandleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.InsightsService.SearchUsers(r.Context(), callerFrom(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.UserSearchResult, 0, len(users))
	for _, u := range users {
		out = append(out, adminsdk.UserSearchResult{
			ID:               u.ID,
			Email:            u.Email,
			Name:             u.Name,
			Role:             u.Role.String(),
			IsSuspended:      u.IsSuspended,
			OrganizationID:   u.OrganizationID,
			OrganizationName: u.OrganizationName,
			CreatedAt:        u.CreatedAt,
		})
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// HandleAuditLogs godoc
//
//	@Summary	List audit logs
//	@Tags		Insights
//	@Produce	json
//	@Param		targetType	query		string	false	"ORGANIZATION, USER, INVITATION or FEATURE_FLAG"
//	@Param		targetId	query		string	false	"Target ID"
//	@Param		limit		query		int		false	"Entries to return"
//	@Success	200			{object}	adminsdk.Response{data=[]adminsdk.AuditLog}
//	@Failure	400			{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/audit-logs [get].
func (h *InsightsHandler) HandleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	entries, err := h.AuditRecorder.List(r.Context(), callerFrom(r), domain.AuditFilter{
		TargetType: domain.TargetType(q.Get("targetType")),
		TargetID:   q.Get("targetId"),
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toAuditLogs(entries))
}

// HandleEmailDeliveries godoc
//
//	@Summary	List email delivery attempts
//	@Tags		Insights
//	@Produce	json
//	@Param		status	query		string	false	"PENDING, SENT or FAILED"
//	@Param		limit	query		int		false	"Entries to return"
//	@Success	200		{object}	adminsdk.Response{data=[]adminsdk.EmailDelivery}
//	@Failure	400		{object}	adminsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/email-deliveries [get].
func (h *InsightsHandler) HandleEmailDeliveries(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	deliveries, err := h.Mailer.ListDeliveries(r.Context(), callerFrom(r),
		domain.DeliveryStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]adminsdk.EmailDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, toEmailDelivery(d))
	}
	httpx.WriteData(w, http.StatusOK, out)
}
