package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/staffnote/internal/app"
	"github.com/okian/staffnote/internal/domain/payload"
	"github.com/okian/staffnote/internal/domain/summary"
	"github.com/okian/staffnote/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

// Error codes carried in the response body.
const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeNotFound      = "not_found"
	codeConflict      = "conflict"
	codeSafetyBlocked = "safety_blocked"
	codeSummaryFailed = "summary_failed"
	codeInternal      = "internal_error"
)

// statusFor maps an error kind to its status and code. Only kinds listed
// here expose their message; everything else is reported as ErrInternal.
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized, true
	case errors.Is(err, payload.ErrInvalid):
		return http.StatusBadRequest, codeBadRequest, true
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, codeNotFound, true
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, codeConflict, true
	case errors.Is(err, summary.ErrSafetyBlocked):
		return http.StatusBadRequest, codeSafetyBlocked, true
	case errors.Is(err, summary.ErrEmptyResponse),
		errors.Is(err, summary.ErrMalformedResponse),
		errors.Is(err, summary.ErrTextReply):
		return http.StatusInternalServerError, codeSummaryFailed, true
	default:
		return http.StatusInternalServerError, codeInternal, false
	}
}

// respondError writes err using statusFor. Unexposed errors are logged
// with their full text and answered with a generic message.
func respondError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code, expose := statusFor(err)
	if !expose {
		log.Error(ctx, "request failed", logger.Error(err))
		writeError(w, status, code, ErrInternal)
		return
	}

	resp := errorResponse{Code: code, Message: err.Error()}

	var blocked *summary.SafetyBlockError
	if errors.As(err, &blocked) {
		resp.Message = "prompt was blocked by safety settings"
		resp.Details = blocked.Error()
		resp.SafetyRatings = blocked.Ratings
	}
	var text *summary.TextReplyError
	if errors.As(err, &text) {
		log.Warn(ctx, "model replied with text", logger.String("text", text.Text))
	}

	writeJSON(w, status, resp)
}
