package hooks

import (
	"mailguard/pkg/email"
	dErrors "mailguard/pkg/domain-errors"
)

// Trigger names the host operation a check guards.
type Trigger string

const (
	TriggerRegistration Trigger = "registration"
	TriggerEmailChange  Trigger = "email_change"
	TriggerComment      Trigger = "comment"
)

// ReasonDisposable is the decision reason when the API flags the address. Error
// decisions use the reputation ErrorKind as their reason.
const ReasonDisposable = "disposable_email"

const maxEmailLength = 320

// Decision tells the host whether to let the operation proceed. Message is the
// user-facing text to show when it must not.
type Decision struct {
	Allowed bool
	Reason  string
	Message string
}

func allow() Decision { return Decision{Allowed: true} }

// RegistrationEvent is sent before a new account is created.
type RegistrationEvent struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (e *RegistrationEvent) Normalize() {
	e.Email = email.Normalize(e.Email)
}

func (e *RegistrationEvent) Validate() error {
	if len(e.Email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be 320 characters or less")
	}
	if e.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

// EmailChangeEvent is sent when an existing user saves their profile.
type EmailChangeEvent struct {
	UserID       string `json:"user_id"`
	CurrentEmail string `json:"current_email"`
	NewEmail     string `json:"new_email"`
}

func (e *EmailChangeEvent) Normalize() {
	e.CurrentEmail = email.Normalize(e.CurrentEmail)
	e.NewEmail = email.Normalize(e.NewEmail)
}

func (e *EmailChangeEvent) Validate() error {
	if len(e.NewEmail) > maxEmailLength || len(e.CurrentEmail) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be 320 characters or less")
	}
	if e.NewEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "new_email is required")
	}
	return nil
}

// Unchanged reports a profile save that kept the same address.
func (e *EmailChangeEvent) Unchanged() bool {
	return e.CurrentEmail != "" && email.SameAddress(e.CurrentEmail, e.NewEmail)
}

// CommentEvent is sent before a comment is stored. Email may be empty when the
// host accepts anonymous comments.
type CommentEvent struct {
	Author string `json:"author"`
	Email  string `json:"email"`
	PostID string `json:"post_id"`
}

func (e *CommentEvent) Normalize() {
	e.Email = email.Normalize(e.Email)
}

func (e *CommentEvent) Validate() error {
	if len(e.Email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be 320 characters or less")
	}
	return nil
}
