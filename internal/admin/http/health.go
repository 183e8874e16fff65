package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/aussiebroadwan/godview/pkg/httpx"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/aussiebroadwan/godview/pkg/mailx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	adminsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, adminsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and the session signing key.
//	@Description	The email transport is reported but never fails the probe.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	adminsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	adminsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
	mailer *service.Mailer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := adminsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks: &adminsdk.HealthChecks{
				Database: "ok",
				Signer:   "ok",
				Email:    emailTransport(mailer),
			},
		}

		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks.Database = "error: " + err.Error()
		}
		if !keys.IsReady() {
			resp.Status = "degraded"
			resp.Checks.Signer = "error: no session key loaded"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, status, resp)
	}
}

func emailTransport(m *service.Mailer) string {
	switch {
	case m == nil || m.Sender == nil:
		return "disabled"
	case isNoop(m.Sender):
		return "noop"
	default:
		return "ok"
	}
}

func isNoop(s mailx.Sender) bool {
	switch s.(type) {
	case mailx.NoopSender, *mailx.NoopSender:
		return true
	}
	return false
}
