package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mailguard/internal/hooks"
	"mailguard/internal/platform/metrics"
	"mailguard/internal/platform/middleware"
	"mailguard/pkg/platform/httputil"
)

// Service defines the trigger points the host platform calls.
type Service interface {
	CheckRegistration(ctx context.Context, ev *hooks.RegistrationEvent) (hooks.Decision, error)
	CheckEmailChange(ctx context.Context, ev *hooks.EmailChangeEvent) (hooks.Decision, error)
	CheckComment(ctx context.Context, ev *hooks.CommentEvent) (hooks.Decision, error)
}

// Handler serves the webhook endpoints.
type Handler struct {
	logger     *slog.Logger
	guard      Service
	metrics    *metrics.Metrics
	hookSecret string
	timeout    time.Duration
}

func New(guard Service, hookSecret string, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		guard:      guard,
		metrics:    m,
		hookSecret: hookSecret,
		timeout:    30 * time.Second,
	}
}

// Register mounts /v1/hooks on r.
func (h *Handler) Register(r chi.Router) {
	hooksRouter := chi.NewRouter()
	hooksRouter.Use(middleware.RequestID)
	hooksRouter.Use(middleware.Recovery(h.logger))
	hooksRouter.Use(middleware.Logger(h.logger))
	hooksRouter.Use(middleware.Timeout(h.timeout))
	hooksRouter.Use(middleware.ContentTypeJSON)
	hooksRouter.Use(middleware.LatencyMiddleware(h.metrics))
	hooksRouter.Use(middleware.RequireHookSecret(h.hookSecret, h.logger))
	hooksRouter.Post("/registration", h.handleRegistration)
	hooksRouter.Post("/email-change", h.handleEmailChange)
	hooksRouter.Post("/comment", h.handleComment)

	r.Mount("/v1/hooks", hooksRouter)
}

// DecisionResponse is the body of every hook reply. Blocked operations reuse the
// error envelope field names so hosts can share one error path.
type DecisionResponse struct {
	Allowed          bool   `json:"allowed"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (h *Handler) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var ev hooks.RegistrationEvent
	if !h.decode(w, r, &ev) {
		return
	}
	decision, err := h.guard.CheckRegistration(r.Context(), &ev)
	h.respond(w, r, hooks.TriggerRegistration, decision, err)
}

func (h *Handler) handleEmailChange(w http.ResponseWriter, r *http.Request) {
	var ev hooks.EmailChangeEvent
	if !h.decode(w, r, &ev) {
		return
	}
	decision, err := h.guard.CheckEmailChange(r.Context(), &ev)
	h.respond(w, r, hooks.TriggerEmailChange, decision, err)
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	var ev hooks.CommentEvent
	if !h.decode(w, r, &ev) {
		return
	}
	decision, err := h.guard.CheckComment(r.Context(), &ev)
	h.respond(w, r, hooks.TriggerComment, decision, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid hook payload",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, trigger hooks.Trigger, d hooks.Decision, err error) {
	if err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "hook failed",
			"request_id", middleware.GetRequestID(ctx),
			"trigger", trigger,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if d.Allowed {
		httputil.WriteJSON(w, http.StatusOK, DecisionResponse{Allowed: true})
		return
	}
	httputil.WriteJSON(w, http.StatusUnprocessableEntity, DecisionResponse{
		Error:            d.Reason,
		ErrorDescription: d.Message,
	})
}
