// Package hooks adapts host platform events to reputation checks. Each trigger
// reads the current settings, runs one check, and turns the result into a
// Decision the host acts on.
package hooks

import (
	"context"
	"errors"
	"log/slog"

	"mailguard/internal/domain"
	"mailguard/internal/platform/metrics"
	"mailguard/internal/reputation"
	"mailguard/pkg/email"
)

// ConfigSource returns the configuration in force for this check.
type ConfigSource interface {
	Current(ctx context.Context) (domain.Configuration, error)
}

// Checker classifies an address.
type Checker interface {
	Check(ctx context.Context, addr string, cfg domain.Configuration) reputation.Result
}

type Guard struct {
	settings     ConfigSource
	checker      Checker
	blockUnknown bool
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithBlockOnUnknown makes unclassified failures (transport errors, malformed
// responses, unknown codes) block the operation instead of letting it through.
func WithBlockOnUnknown(block bool) Option {
	return func(g *Guard) {
		g.blockUnknown = block
	}
}

func New(settings ConfigSource, checker Checker, opts ...Option) (*Guard, error) {
	if settings == nil {
		return nil, errors.New("settings source is required")
	}
	if checker == nil {
		return nil, errors.New("checker is required")
	}
	g := &Guard{
		settings: settings,
		checker:  checker,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CheckRegistration guards new account creation.
func (g *Guard) CheckRegistration(ctx context.Context, ev *RegistrationEvent) (Decision, error) {
	ev.Normalize()
	if err := ev.Validate(); err != nil {
		return Decision{}, err
	}
	return g.evaluate(ctx, TriggerRegistration, ev.Email)
}

// CheckEmailChange guards profile updates. A save that keeps the same address
// is allowed without a lookup.
func (g *Guard) CheckEmailChange(ctx context.Context, ev *EmailChangeEvent) (Decision, error) {
	ev.Normalize()
	if err := ev.Validate(); err != nil {
		return Decision{}, err
	}
	if ev.Unchanged() {
		g.record(TriggerEmailChange, allow(), "unchanged")
		return allow(), nil
	}
	return g.evaluate(ctx, TriggerEmailChange, ev.NewEmail)
}

// CheckComment guards comment submission. Anonymous comments carry no address
// and are allowed.
func (g *Guard) CheckComment(ctx context.Context, ev *CommentEvent) (Decision, error) {
	ev.Normalize()
	if err := ev.Validate(); err != nil {
		return Decision{}, err
	}
	if ev.Email == "" {
		g.record(TriggerComment, allow(), "no_email")
		return allow(), nil
	}
	return g.evaluate(ctx, TriggerComment, ev.Email)
}

func (g *Guard) evaluate(ctx context.Context, trigger Trigger, addr string) (Decision, error) {
	cfg, err := g.settings.Current(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "cannot read settings for check",
			"trigger", trigger,
			"error", err,
		)
		return Decision{}, err
	}

	result := g.checker.Check(ctx, addr, cfg)
	decision := g.decide(ctx, trigger, addr, result)
	g.record(trigger, decision, result.Outcome())
	return decision, nil
}

func (g *Guard) decide(ctx context.Context, trigger Trigger, addr string, result reputation.Result) Decision {
	switch {
	case result.IsAllowed():
		return allow()
	case result.IsRejected():
		g.logger.InfoContext(ctx, "disposable email blocked",
			"trigger", trigger,
			"email", email.Mask(addr),
			"email_domain", email.Domain(addr),
		)
		return Decision{Reason: ReasonDisposable, Message: result.UserMessage()}
	case result.Kind == reputation.ErrorUnknown && !g.blockUnknown:
		g.logger.WarnContext(ctx, "reputation check failed, allowing",
			"trigger", trigger,
			"email_domain", email.Domain(addr),
		)
		return allow()
	default:
		g.logger.WarnContext(ctx, "reputation check failed, blocking",
			"trigger", trigger,
			"kind", result.Kind,
			"email_domain", email.Domain(addr),
		)
		return Decision{Reason: string(result.Kind), Message: result.UserMessage()}
	}
}

func (g *Guard) record(trigger Trigger, d Decision, outcome string) {
	if g.metrics == nil {
		return
	}
	reason := d.Reason
	if reason == "" {
		reason = outcome
	}
	g.metrics.IncrementHookDecision(string(trigger), d.Allowed, reason)
}
