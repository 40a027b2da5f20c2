package domain

import "strings"

// DefaultDisposableMessage is shown when the administrator has not customized the
// rejection text.
const DefaultDisposableMessage = "The email address provided is not valid. Please provide a valid email address. Disposable emails are not permitted."

// Legacy token tiers. The remote API no longer requires the Type header; it is only
// sent when an administrator still has a tier stored.
const (
	TokenTypePaid = "1"
	TokenTypeFree = "2"
)

// Configuration is the administrator-controlled state every check reads.
type Configuration struct {
	APIToken          string // secret; never logged or returned in full
	Enabled           bool
	DisposableMessage string
	TokenType         string // deprecated tier, "" when unset
}

// DefaultConfiguration is what a fresh install starts with: no token, checks off.
func DefaultConfiguration() Configuration {
	return Configuration{
		DisposableMessage: DefaultDisposableMessage,
	}
}

// RejectionMessage returns the configured disposable message, falling back to the
// default when it was stored blank.
func (c Configuration) RejectionMessage() string {
	if msg := strings.TrimSpace(c.DisposableMessage); msg != "" {
		return msg
	}
	return DefaultDisposableMessage
}

// Redacted returns a copy safe to hand to admin clients.
func (c Configuration) Redacted() Configuration {
	c.APIToken = MaskToken(c.APIToken)
	return c
}

// MaskToken keeps the last four characters of a token so administrators can tell
// tokens apart.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// ValidTokenType reports whether t is an accepted legacy tier value.
func ValidTokenType(t string) bool {
	return t == "" || t == TokenTypePaid || t == TokenTypeFree
}
