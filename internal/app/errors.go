package service

import "errors"

// Error kinds returned by Service. Validation failures are *payload.ValidationError
// and extraction failures keep their summary kinds.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrUpstream  = errors.New("upstream failure")
	ErrNoStore   = errors.New("document store not configured")
	ErrNoSummary = errors.New("summary model not configured")
)
