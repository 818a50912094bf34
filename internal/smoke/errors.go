package smoke

import "errors"

// Sentinel kinds for smoke run failures.
var (
	ErrRequest          = errors.New("request failed")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrCheck            = errors.New("check failed")
)
