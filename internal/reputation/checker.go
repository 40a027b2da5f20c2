// Package reputation asks the remote email reputation API whether an address is
// disposable and folds every possible outcome into a Result value.
package reputation

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mailguard/internal/domain"
	"mailguard/internal/reputation/metrics"
	"mailguard/pkg/email"
)

// tokenProbeAddress is a known-good mailbox used to exercise a candidate token.
const tokenProbeAddress = "test@gmail.com"

// Checker produces verdicts for email addresses. It holds no per-check state and is
// safe for concurrent use.
type Checker struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(c *Checker)

// WithBaseURL points the checker at another deployment of the API (or a test server).
func WithBaseURL(baseURL string) Option {
	return func(c *Checker) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the transport. The default client sets no timeout so the
// caller's context is the only bound.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets an explicit client timeout. Zero keeps the default (none).
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.httpClient = &http.Client{Transport: c.httpClient.Transport, Timeout: d}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Checker) {
		c.tracer = tracer
	}
}

// New constructs a Checker against DefaultBaseURL unless overridden.
func New(opts ...Option) *Checker {
	c := &Checker{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer("mailguard/reputation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check classifies addr under cfg. A disabled configuration short-circuits to
// Allowed without any network call. Every failure path degrades to a Result; Check
// never returns an error.
func (c *Checker) Check(ctx context.Context, addr string, cfg domain.Configuration) Result {
	if !cfg.Enabled {
		return Allowed()
	}

	resp, err := c.lookup(ctx, addr, cfg.APIToken, cfg.TokenType)
	if err != nil {
		c.logger.WarnContext(ctx, "reputation lookup failed",
			"category", categoryOf(err),
			"email_domain", email.Domain(addr),
			"error", err,
		)
		result := Failed(ErrorUnknown)
		c.incrementCheck(result)
		return result
	}

	result := classify(resp, cfg)
	if result.IsError() {
		c.logger.WarnContext(ctx, "reputation API returned an error code",
			"error_code", resp.ErrorCode.Value,
			"kind", result.Kind,
			"detail", result.Detail,
		)
	}
	c.incrementCheck(result)
	return result
}

// IsTokenValid gates activation. It fails closed: an empty token, a transport
// failure, or an unreadable response all count as invalid. Only the InvalidToken
// classification is otherwise treated as a rejection of the token.
func (c *Checker) IsTokenValid(ctx context.Context, token string) bool {
	valid := c.isTokenValid(ctx, strings.TrimSpace(token))
	if c.metrics != nil {
		c.metrics.IncrementTokenValidation(valid)
	}
	return valid
}

func (c *Checker) isTokenValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	resp, err := c.lookup(ctx, tokenProbeAddress, token, "")
	if err != nil {
		c.logger.WarnContext(ctx, "token validation lookup failed",
			"category", categoryOf(err),
			"error", err,
		)
		return false
	}
	if resp.ErrorCode.Present && KindForCode(resp.ErrorCode.Value) == ErrorInvalidToken {
		c.logger.InfoContext(ctx, "api token rejected by reputation API",
			"error_code", resp.ErrorCode.Value,
		)
		return false
	}
	return true
}

// classify applies the response rules in order: error_code first, then the
// disposable flag. Other fields are ignored.
func classify(resp *remoteResponse, cfg domain.Configuration) Result {
	if resp.ErrorCode.Present {
		result := Failed(KindForCode(resp.ErrorCode.Value))
		result.Detail = resp.Message
		return result
	}
	if resp.Disposable == "yes" {
		return Rejected(cfg.RejectionMessage())
	}
	return Allowed()
}

func (c *Checker) incrementCheck(result Result) {
	if c.metrics != nil {
		c.metrics.IncrementCheck(result.Outcome())
	}
}
