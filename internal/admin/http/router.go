package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/aussiebroadwan/godview/pkg/slogx"

	_ "github.com/aussiebroadwan/godview/api/admin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// CookieSecure switches the session cookie to its __Secure- name with
	// the Secure attribute set.
	CookieSecure bool

	Guard                *service.Guard
	AccountService       *service.AccountService
	MFAService           *service.MFAService
	InvitationService    *service.InvitationService
	OrganizationService  *service.OrganizationService
	ImpersonationService *service.ImpersonationService
	InsightsService      *service.InsightsService
	FeatureFlagService   *service.FeatureFlagService
	AuditRecorder        *service.AuditRecorder
	Mailer               *service.Mailer
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerMFA()
	r.registerAdminInvites()
	r.registerInvitations()
	r.registerOrganizations()
	r.registerImpersonation()
	r.registerInsights()
	r.registerFeatureFlags()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			godview Super Admin API
//	@version		0.1.0
//	@description	Control panel for platform operators: organizations, invitations, impersonation, feature flags and audit.
//	@description
//	@description	Every mutation is recorded in the audit log. Sessions are EdDSA-signed JWTs carried in an HttpOnly cookie.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/godview
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						godview.session_token
//	@description				Session cookie set by POST /v1/auth/sign-in. Named __Secure-godview.session_token over HTTPS.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated gates h behind the session cookie and the guard, then rate
// limits per user.
func (r *Router) authenticated(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.RequireCookie(service.SessionCookieNames...), // cheap presence check
		RequireCaller(r.Guard),                             // verify JWT and session row
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AccountService: r.AccountService,
		CookieSecure:   r.CookieSecure,
	}

	// POST /bootstrap - strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(http.HandlerFunc(h.HandleBootstrap),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/sign-in - strict rate limit by IP + email to slow credential stuffing
	r.Mux.Handle("POST /v1/auth/sign-in",
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("POST /v1/auth/sign-out", r.authenticated(h.HandleSignOut, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/auth/me", r.authenticated(h.HandleMe, httpx.LenientLimit))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/totp/enroll", r.authenticated(h.HandleEnroll, httpx.ModerateLimit))
	// Strict: each call is a guess at a six digit code
	r.Mux.Handle("POST /v1/mfa/totp/verify", r.authenticated(h.HandleVerify, httpx.StrictLimit))
	r.Mux.Handle("DELETE /v1/mfa/totp", r.authenticated(h.HandleRemove, httpx.StrictLimit))
}

func (r *Router) registerAdminInvites() {
	h := &AdminInviteHandler{InvitationService: r.InvitationService}

	// Super admin management
	r.Mux.Handle("POST /v1/admin-invites", r.authenticated(h.HandleIssue, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin-invites", r.authenticated(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/admin-invites/{id}/revoke", r.authenticated(h.HandleRevoke, httpx.ModerateLimit))

	// Public redemption - strict rate limit by IP (token guessing)
	r.Mux.Handle("GET /v1/admin-invites/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin-invites/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAcceptNew),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Existing account finalize
	r.Mux.Handle("PUT /v1/admin-invites/accept", r.authenticated(h.HandleAcceptExisting, httpx.StrictLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("GET /v1/invitations/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/accept-new",
		httpx.Chain(http.HandlerFunc(h.HandleAcceptNew),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/accept", r.authenticated(h.HandleAccept, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/invitations/{id}/revoke", r.authenticated(h.HandleRevoke, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/organizations/{id}/admin-invites", r.authenticated(h.HandleIssueOrgAdmin, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/organizations/{id}/invitations", r.authenticated(h.HandleIssueMember, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/organizations/{id}/invitations", r.authenticated(h.HandleListForOrganization, httpx.LenientLimit))
}

func (r *Router) registerOrganizations() {
	h := &OrganizationHandler{OrganizationService: r.OrganizationService}

	r.Mux.Handle("GET /v1/organizations", r.authenticated(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/organizations", r.authenticated(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/organizations/{id}", r.authenticated(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/organizations/{id}", r.authenticated(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/organizations/{id}/suspend", r.authenticated(h.HandleSuspend, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/organizations/{id}/activate", r.authenticated(h.HandleActivate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/organizations/{id}/plan", r.authenticated(h.HandleUpdatePlan, httpx.ModerateLimit))
}

func (r *Router) registerImpersonation() {
	h := &ImpersonationHandler{ImpersonationService: r.ImpersonationService}

	r.Mux.Handle("POST /v1/users/{id}/impersonate", r.authenticated(h.HandleIssue, httpx.ModerateLimit))

	// POST /impersonation/consume - called by the main application, strict by IP
	r.Mux.Handle("POST /v1/impersonation/consume",
		httpx.Chain(http.HandlerFunc(h.HandleConsume),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInsights() {
	h := &InsightsHandler{
		InsightsService: r.InsightsService,
		AuditRecorder:   r.AuditRecorder,
		Mailer:          r.Mailer,
	}

	r.Mux.Handle("GET /v1/stats", r.authenticated(h.HandleStats, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/stats/growth", r.authenticated(h.HandleGrowth, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/activity", r.authenticated(h.HandleActivity, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/users", r.authenticated(h.HandleSearchUsers, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/audit-logs", r.authenticated(h.HandleAuditLogs, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/email-deliveries", r.authenticated(h.HandleEmailDeliveries, httpx.LenientLimit))
}

func (r *Router) registerFeatureFlags() {
	h := &FeatureFlagHandler{FeatureFlagService: r.FeatureFlagService}

	r.Mux.Handle("GET /v1/feature-flags", r.authenticated(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/feature-flags", r.authenticated(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/feature-flags/{id}/enabled", r.authenticated(h.HandleToggle, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/feature-flags/{id}/organizations", r.authenticated(h.HandleSetOrganizations, httpx.ModerateLimit))

	// GET /feature-flags/{key}/evaluate - polled by the main application, public limit
	r.Mux.Handle("GET /v1/feature-flags/{key}/evaluate",
		httpx.Chain(http.HandlerFunc(h.HandleEvaluate),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.Mailer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
