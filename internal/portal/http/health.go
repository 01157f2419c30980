package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
)

// ReadyCheck reports whether an optional dependency is reachable.
type ReadyCheck func(ctx context.Context) error

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness endpoint returning basic service health status, uptime, and version information
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check covering the database and any configured denylist
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, extra map[string]ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		status, code := "ok", http.StatusOK

		if err := st.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		for name, check := range extra {
			checks[name] = "ok"
			if err := check(ctx); err != nil {
				checks[name] = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
