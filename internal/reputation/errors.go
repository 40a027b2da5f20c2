package reputation

import (
	"errors"
	"fmt"
)

// ErrorKind is the normalized classification of a failed remote call. It is distinct
// from the disposable/non-disposable business outcome.
type ErrorKind string

const (
	ErrorRateLimitExceeded  ErrorKind = "rate_limit_exceeded"
	ErrorInvalidToken       ErrorKind = "invalid_token"
	ErrorMissingToken       ErrorKind = "missing_token"
	ErrorDailyLimitExceeded ErrorKind = "daily_limit_exceeded"
	ErrorServiceUnavailable ErrorKind = "service_unavailable"
	ErrorUnknown            ErrorKind = "unknown"
)

// DocsURL is where the remote API documents its error codes.
const DocsURL = "https://support.api-aries.online/hc/articles/1/3/3/email-checker"

// errorCodes maps the remote error_code field onto ErrorKind. Anything not listed
// here is ErrorUnknown.
var errorCodes = map[string]ErrorKind{
	"QR89": ErrorRateLimitExceeded,
	"XR12": ErrorInvalidToken,
	"100":  ErrorInvalidToken,
	"101":  ErrorMissingToken,
	"102":  ErrorDailyLimitExceeded,
	"103":  ErrorServiceUnavailable,
}

var errorMessages = map[ErrorKind]string{
	ErrorRateLimitExceeded:  "Email verification is temporarily unavailable because the API rate limit was exceeded. Please try again later. (" + DocsURL + ")",
	ErrorInvalidToken:       "Email verification failed because the API token is invalid. Please contact the site administrator. (" + DocsURL + ")",
	ErrorMissingToken:       "Email verification failed because no API token is configured. Please contact the site administrator. (" + DocsURL + ")",
	ErrorDailyLimitExceeded: "Email verification is unavailable because the daily request limit was reached. Please try again tomorrow. (" + DocsURL + ")",
	ErrorServiceUnavailable: "The email verification service is currently unavailable. Please try again later. (" + DocsURL + ")",
	ErrorUnknown:            "An unknown error occurred while verifying your email address. Please try again later.",
}

// KindForCode looks up the remote error_code. Unrecognized codes are ErrorUnknown.
func KindForCode(code string) ErrorKind {
	if kind, ok := errorCodes[code]; ok {
		return kind
	}
	return ErrorUnknown
}

// Message returns the fixed user-facing text for the kind.
func (k ErrorKind) Message() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return errorMessages[ErrorUnknown]
}

// failureCategory separates "we could not talk to the API" from "the API answered
// with something we cannot read". Both surface as ErrorUnknown to end users; token
// validation and logs care about the difference.
type failureCategory string

const (
	failureTransport failureCategory = "transport"
	failureBadData   failureCategory = "bad_data"
)

// lookupError wraps a failed lookup with its category.
type lookupError struct {
	Category   failureCategory
	Message    string
	StatusCode int
	Underlying error
}

func (e *lookupError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("reputation lookup [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("reputation lookup [%s]: %s", e.Category, e.Message)
}

func (e *lookupError) Unwrap() error {
	return e.Underlying
}

func categoryOf(err error) failureCategory {
	var le *lookupError
	if errors.As(err, &le) {
		return le.Category
	}
	return failureTransport
}
