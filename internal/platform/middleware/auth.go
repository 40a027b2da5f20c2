package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// HeaderAdminToken carries the static admin credential.
const HeaderAdminToken = "X-Admin-Token"

// HeaderHookSecret carries the shared secret the host platform signs hooks with.
const HeaderHookSecret = "X-Hook-Secret"

// RequireAdminToken guards the settings surface.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireHeader(HeaderAdminToken, expectedToken, "admin token required", logger)
}

// RequireHookSecret guards the hook endpoints. An empty secret leaves them open,
// which is only sensible when the service is reachable by the host alone.
func RequireHookSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	if secret == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return requireHeader(HeaderHookSecret, secret, "hook secret required", logger)
}

func requireHeader(header, expected, description string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			// constant-time comparison
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "credential mismatch",
					"header", header,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
