// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	"github.com/okian/staffnote/pkg/logger"
)

// EmployeeHandler handles employee and employee event requests.
type EmployeeHandler struct {
	deps   EmployeeDependencies
	logger logger.Logger
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(deps EmployeeDependencies, log logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{deps: deps, logger: log}
}

// HandleCreateEmployee handles POST /employees/{id} requests.
func (h *EmployeeHandler) HandleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue(pathEmployeeID)

	in, err := bindEmployee(r.Body)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	e, err := h.deps.CreateEmployee(ctx, id, in)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, employeeCreatedResponse{
		Message: fmt.Sprintf("Employee %s created successfully", id),
		Data:    newEmployeeResponse(e),
	})
}

// HandleGetEmployee handles GET /employees/{id} requests.
func (h *EmployeeHandler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.deps.GetEmployee(ctx, r.PathValue(pathEmployeeID))
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newEmployeeResponse(e))
}

// HandleCreateEvent handles POST /employees/{id}/events requests.
func (h *EmployeeHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, err := bindEvent(r.Body)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	ev, err := h.deps.CreateEvent(ctx, r.PathValue(pathEmployeeID), in)
	if err != nil {
		respondError(ctx, w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(ev))
}
