package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mailguard/internal/domain"
	"mailguard/internal/platform/metrics"
	"mailguard/internal/platform/middleware"
	"mailguard/internal/settings"
	"mailguard/pkg/platform/httputil"
)

// Service defines the settings operations the admin surface exposes.
type Service interface {
	Current(ctx context.Context) (domain.Configuration, error)
	Update(ctx context.Context, req *settings.UpdateRequest) (domain.Configuration, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
}

// Handler serves the admin settings endpoints.
type Handler struct {
	logger     *slog.Logger
	settings   Service
	metrics    *metrics.Metrics
	adminToken string
}

func New(svc Service, adminToken string, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		settings:   svc,
		metrics:    m,
		adminToken: adminToken,
	}
}

// Register mounts /admin/settings on r.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.RequestID)
	adminRouter.Use(middleware.Recovery(h.logger))
	adminRouter.Use(middleware.Logger(h.logger))
	// token validation waits on the remote API
	adminRouter.Use(middleware.Timeout(30 * time.Second))
	adminRouter.Use(middleware.ContentTypeJSON)
	adminRouter.Use(middleware.LatencyMiddleware(h.metrics))
	adminRouter.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
	adminRouter.Get("/settings", h.handleGetSettings)
	adminRouter.Put("/settings", h.handleUpdateSettings)
	adminRouter.Post("/settings/validate-token", h.handleValidateToken)

	r.Mount("/admin", adminRouter)
}

// SettingsResponse never carries the full token.
type SettingsResponse struct {
	APIToken          string `json:"api_token"`
	TokenConfigured   bool   `json:"token_configured"`
	Enabled           bool   `json:"enabled"`
	DisposableMessage string `json:"disposable_email_message"`
	TokenType         string `json:"token_type"`
}

type ValidateTokenRequest struct {
	APIToken string `json:"api_token"`
}

type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

func toResponse(cfg domain.Configuration) SettingsResponse {
	redacted := cfg.Redacted()
	return SettingsResponse{
		APIToken:          redacted.APIToken,
		TokenConfigured:   cfg.APIToken != "",
		Enabled:           cfg.Enabled,
		DisposableMessage: cfg.DisposableMessage,
		TokenType:         cfg.TokenType,
	}
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.settings.Current(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read settings",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cfg))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req settings.UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid settings update",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.settings.Update(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "settings update rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cfg))
}

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ValidateTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	valid, err := h.settings.ValidateToken(ctx, req.APIToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "token validated",
		"request_id", middleware.GetRequestID(ctx),
		"token", domain.MaskToken(req.APIToken),
		"valid", valid,
	)
	httputil.WriteJSON(w, http.StatusOK, ValidateTokenResponse{Valid: valid})
}
