package sentinel

import "errors"

// ErrUnavailable marks a settings backend that could not be reached. Stores wrap
// it alongside the driver error; the settings service reports it to callers as
// a service_unavailable domain error.
var ErrUnavailable = errors.New("unavailable")
