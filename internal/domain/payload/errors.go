package payload

import (
	"errors"
)

// ErrInvalid is the kind shared by every validation failure.
var ErrInvalid = errors.New("invalid request")

// ValidationError names the request field that failed validation.
// Field is empty when the body as a whole is unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return "'" + e.Field + "' " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Invalid builds a ValidationError for checks made outside this package,
// such as a path parameter.
func Invalid(field, msg string) error {
	return invalid(field, msg)
}
