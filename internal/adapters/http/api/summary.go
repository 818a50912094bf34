// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/staffnote/pkg/logger"
)

// SummaryHandler handles meeting transcript summarization.
type SummaryHandler struct {
	deps   SummaryDependencies
	logger logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, log logger.Logger) *SummaryHandler {
	return &SummaryHandler{deps: deps, logger: log}
}

// HandleSummarize handles POST /meeting-summary/meeting requests.
func (h *SummaryHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := bindSummary(r.Body)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	res, err := h.deps.SummarizeMeeting(ctx, req.transcript, req.save)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}

	resp := summaryResponse{Message: "Meeting summary generated", Summary: res.Summary}
	if res.Saved() {
		resp.Message = "Meeting summary generated and saved"
		resp.SummaryID = res.ID
	}
	writeJSON(w, http.StatusOK, resp)
}
