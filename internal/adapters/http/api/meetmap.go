// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/staffnote/pkg/logger"
)

// MeetMapHandler handles Google Meet name mapping requests. The email is
// the rest of the path and may contain slashes.
type MeetMapHandler struct {
	deps   MeetMapDependencies
	logger logger.Logger
}

// NewMeetMapHandler creates a new mapping handler.
func NewMeetMapHandler(deps MeetMapDependencies, log logger.Logger) *MeetMapHandler {
	return &MeetMapHandler{deps: deps, logger: log}
}

// HandleUpsert handles POST /google_meet_employee_map/{email} requests.
func (h *MeetMapHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := bindMeetName(r.Body)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	m, err := h.deps.UpsertMeetMapping(ctx, r.PathValue(pathMeetMappingMail), name)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meetMappingResponse{
		Message:        "Google Meet mapping saved",
		Email:          m.Email,
		GoogleMeetName: m.GoogleMeetName,
	})
}

// HandleGet handles GET /google_meet_employee_map/{email} requests.
func (h *MeetMapHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := h.deps.GetMeetMapping(ctx, r.PathValue(pathMeetMappingMail))
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meetMappingResponse{Email: m.Email, GoogleMeetName: m.GoogleMeetName})
}
