// Package settings owns the administrator-controlled configuration: loading it
// with first-access defaults, partial updates, and the token activation gate.
package settings

import (
	"context"
	"log/slog"

	"mailguard/internal/domain"
	dErrors "mailguard/pkg/domain-errors"
)

// Store is a flat key-value backend.
type Store interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	// SaveMissing writes only keys that are absent, so concurrent first reads
	// never clobber an administrator's update.
	SaveMissing(ctx context.Context, values map[string]string) error
	Ping(ctx context.Context) error
}

// TokenValidator confirms a candidate API token against the remote service.
type TokenValidator interface {
	IsTokenValid(ctx context.Context, token string) bool
}

type Service struct {
	store     Store
	validator TokenValidator
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store Store, validator TokenValidator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the stored configuration. Keys that were never written are
// seeded with their defaults on the way out.
func (s *Service) Current(ctx context.Context) (domain.Configuration, error) {
	values, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load settings", "error", err)
		return domain.Configuration{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings are unavailable")
	}

	missing := make(map[string]string)
	for k, v := range encode(domain.DefaultConfiguration()) {
		if _, ok := values[k]; !ok {
			missing[k] = v
		}
	}
	if len(missing) > 0 {
		if err := s.store.SaveMissing(ctx, missing); err != nil {
			s.logger.ErrorContext(ctx, "failed to seed default settings", "error", err)
			return domain.Configuration{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings are unavailable")
		}
		s.logger.InfoContext(ctx, "seeded default settings", "keys", len(missing))
		// another writer may have set a key between Load and SaveMissing
		if values, err = s.store.Load(ctx); err != nil {
			s.logger.ErrorContext(ctx, "failed to reload settings", "error", err)
			return domain.Configuration{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings are unavailable")
		}
	}
	return decode(values), nil
}

// Update applies a partial update. Enabling checks, or changing the token while
// they are enabled, requires the remote service to accept the token first.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (domain.Configuration, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Configuration{}, err
	}

	current, err := s.Current(ctx)
	if err != nil {
		return domain.Configuration{}, err
	}
	next := req.apply(current)

	activating := next.Enabled && !current.Enabled
	tokenChanged := next.APIToken != current.APIToken
	if next.Enabled && (activating || tokenChanged) {
		if next.APIToken == "" {
			return domain.Configuration{}, dErrors.New(dErrors.CodeValidation, "api token is required to enable checks")
		}
		if !s.validator.IsTokenValid(ctx, next.APIToken) {
			s.logger.WarnContext(ctx, "settings update refused: token rejected",
				"token", domain.MaskToken(next.APIToken),
				"activating", activating,
			)
			return domain.Configuration{}, dErrors.New(dErrors.CodeValidation, "api token is invalid")
		}
	}

	if err := s.store.Save(ctx, changedValues(current, next)); err != nil {
		s.logger.ErrorContext(ctx, "failed to save settings", "error", err)
		return domain.Configuration{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "settings are unavailable")
	}
	s.logger.InfoContext(ctx, "settings updated",
		"enabled", next.Enabled,
		"token", domain.MaskToken(next.APIToken),
		"token_changed", tokenChanged,
	)
	return next, nil
}

// ValidateToken runs the remote token probe without touching stored settings.
func (s *Service) ValidateToken(ctx context.Context, token string) (bool, error) {
	if len(token) > maxTokenLength {
		return false, dErrors.New(dErrors.CodeValidation, "api_token must be 256 characters or less")
	}
	return s.validator.IsTokenValid(ctx, token), nil
}

// Health reports whether the backend is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func changedValues(before, after domain.Configuration) map[string]string {
	prev := encode(before)
	out := make(map[string]string)
	for k, v := range encode(after) {
		if prev[k] != v {
			out[k] = v
		}
	}
	return out
}
