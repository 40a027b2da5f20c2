package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mailguard/pkg/platform/httputil"
)

// Registrar is implemented by every feature handler that owns a route subtree.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether the settings backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter mounts the feature handlers plus /healthz and, when metricsHandler is
// non-nil, /metrics. Feature handlers bring their own middleware stacks.
func NewRouter(health HealthChecker, metricsHandler http.Handler, handlers ...Registrar) chi.Router {
	r := chi.NewRouter()
	for _, h := range handlers {
		h.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := health.Health(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}
