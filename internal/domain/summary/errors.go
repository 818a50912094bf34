package summary

import (
	"errors"
	"strings"
)

// Extraction failure kinds.
var (
	// ErrSafetyBlocked is matched by every *SafetyBlockError.
	ErrSafetyBlocked = errors.New("summary: blocked by safety settings")
	// ErrEmptyResponse means the model returned no candidates.
	ErrEmptyResponse = errors.New("summary: model returned no candidates")
	// ErrMalformedResponse means a candidate had no usable content.
	ErrMalformedResponse = errors.New("summary: model response was malformed")
	// ErrTextReply is matched by every *TextReplyError.
	ErrTextReply = errors.New("summary: model replied with text instead of a function call")
)

// SafetyBlockError reports a prompt or candidate stopped by the model's safety filters.
type SafetyBlockError struct {
	// Reason is the block or finish reason reported by the model.
	Reason string
	// Ratings are "CATEGORY: PROBABILITY" pairs.
	Ratings []string
}

func (e *SafetyBlockError) Error() string {
	msg := ErrSafetyBlocked.Error()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if len(e.Ratings) > 0 {
		msg += ": " + strings.Join(e.Ratings, ", ")
	}
	return msg
}

func (e *SafetyBlockError) Unwrap() error { return ErrSafetyBlocked }

// TextReplyError carries the text the model produced instead of a function call.
type TextReplyError struct {
	Text string
}

func (e *TextReplyError) Error() string { return ErrTextReply.Error() }

func (e *TextReplyError) Unwrap() error { return ErrTextReply }
