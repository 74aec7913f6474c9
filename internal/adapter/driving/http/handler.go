// Package httphandler implements the HTTP API driving adapter: health and
// metrics endpoints, the guarded upload endpoint, and edge middleware.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHandler creates a Handler. db may be nil, in which case health checks
// only report that the process is up.
func NewHandler(db Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes. The Prometheus scrape
// endpoint is mounted only when metrics is non-nil and metricsToken is set,
// and then only behind RequireBearer.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler, metrics http.Handler, metricsToken string) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	if metrics != nil && metricsToken != "" {
		mux.Handle("GET /metrics", RequireBearer(metricsToken, metrics))
	}
}

// RegisterUploadRoutes mounts the tus endpoint at basePath behind the upload
// token check.
func RegisterUploadRoutes(mux *http.ServeMux, basePath string, uploads http.Handler, secret string, metrics EdgeMetrics) {
	mux.Handle(basePath, RequireUploadToken(secret, metrics, uploads))
}

// Health reports whether the process and its database are usable. The
// database check is skipped when no Pinger was configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: healthOK,
		Checks: map[string]string{},
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Checks["database"] = healthOK
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", "check", "database", "error", err)
			resp.Status = healthUnavailable
			resp.Checks["database"] = healthUnavailable
		}
	}

	status := http.StatusOK
	if resp.Status != healthOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
