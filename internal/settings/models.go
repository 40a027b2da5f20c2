package settings

import (
	"strings"

	"mailguard/internal/domain"
	dErrors "mailguard/pkg/domain-errors"
)

// Persisted keys. The values are plain strings in every backend.
const (
	KeyAPIToken          = "api_token"
	KeyEnabled           = "enabled"
	KeyDisposableMessage = "disposable_email_message"
	KeyTokenType         = "token_type"
)

const (
	maxTokenLength   = 256
	maxMessageLength = 1000
)

// UpdateRequest is a partial update: nil fields keep their stored value.
type UpdateRequest struct {
	APIToken          *string `json:"api_token,omitempty"`
	Enabled           *bool   `json:"enabled,omitempty"`
	DisposableMessage *string `json:"disposable_email_message,omitempty"`
	TokenType         *string `json:"token_type,omitempty"`
}

func (r *UpdateRequest) Normalize() {
	if r == nil {
		return
	}
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.APIToken)
	trim(r.DisposableMessage)
	trim(r.TokenType)
}

// Follows validation order: Size -> Required -> Syntax.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.APIToken != nil && len(*r.APIToken) > maxTokenLength {
		return dErrors.New(dErrors.CodeValidation, "api_token must be 256 characters or less")
	}
	if r.DisposableMessage != nil && len(*r.DisposableMessage) > maxMessageLength {
		return dErrors.New(dErrors.CodeValidation, "disposable_email_message must be 1000 characters or less")
	}

	if r.APIToken == nil && r.Enabled == nil && r.DisposableMessage == nil && r.TokenType == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one setting is required")
	}

	if r.TokenType != nil && !domain.ValidTokenType(*r.TokenType) {
		return dErrors.New(dErrors.CodeValidation, "token_type must be '1', '2' or empty")
	}
	return nil
}

// apply returns cfg with the request's fields laid over it.
func (r *UpdateRequest) apply(cfg domain.Configuration) domain.Configuration {
	if r.APIToken != nil {
		cfg.APIToken = *r.APIToken
	}
	if r.Enabled != nil {
		cfg.Enabled = *r.Enabled
	}
	if r.DisposableMessage != nil {
		cfg.DisposableMessage = *r.DisposableMessage
	}
	if r.TokenType != nil {
		cfg.TokenType = *r.TokenType
	}
	return cfg
}

func encode(cfg domain.Configuration) map[string]string {
	enabled := "0"
	if cfg.Enabled {
		enabled = "1"
	}
	return map[string]string{
		KeyAPIToken:          cfg.APIToken,
		KeyEnabled:           enabled,
		KeyDisposableMessage: cfg.DisposableMessage,
		KeyTokenType:         cfg.TokenType,
	}
}

// decode tolerates values written by hand: "true" counts as enabled as well.
func decode(values map[string]string) domain.Configuration {
	enabled := strings.TrimSpace(strings.ToLower(values[KeyEnabled]))
	return domain.Configuration{
		APIToken:          values[KeyAPIToken],
		Enabled:           enabled == "1" || enabled == "true",
		DisposableMessage: values[KeyDisposableMessage],
		TokenType:         values[KeyTokenType],
	}
}
