// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/staffnote/internal/app"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EmployeeDependencies
	MeetMapDependencies
	SummaryDependencies
}

// EmployeeDependencies covers employee records and their events.
type EmployeeDependencies interface {
	CreateEmployee(ctx context.Context, id string, in service.EmployeeInput) (model.Employee, error)
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
	CreateEvent(ctx context.Context, employeeID string, in service.EventInput) (model.EmployeeEvent, error)
}

// MeetMapDependencies covers the email to Google Meet name mapping.
type MeetMapDependencies interface {
	UpsertMeetMapping(ctx context.Context, email, name string) (model.MeetMapping, error)
	GetMeetMapping(ctx context.Context, email string) (model.MeetMapping, error)
}

// SummaryDependencies covers transcript summarization.
type SummaryDependencies interface {
	SummarizeMeeting(ctx context.Context, transcript string, save bool) (service.SummaryResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	authKey string
	logger  logger.Logger

	healthHandler   *HealthHandler
	rootHandler     *RootHandler
	employeeHandler *EmployeeHandler
	meetMapHandler  *MeetMapHandler
	summaryHandler  *SummaryHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by middleware and handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers. Protected routes
// require the X-Auth-Key header to equal authKey.
func NewServer(deps Dependencies, authKey string, opts ...Option) *Server {
	s := &Server{
		authKey: authKey,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.rootHandler = NewRootHandler()
	s.employeeHandler = NewEmployeeHandler(deps, s.logger)
	s.meetMapHandler = NewMeetMapHandler(deps, s.logger)
	s.summaryHandler = NewSummaryHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	s.handle(mux, "GET /{$}", "root", false, s.rootHandler.HandleHello)
	s.handle(mux, "GET /healthz", "healthz", false, s.healthHandler.HandleHealth)
	s.handle(mux, "POST /data", "data", true, s.rootHandler.HandleData)

	s.handle(mux, "POST /employees/{id}", "employees", true, s.employeeHandler.HandleCreateEmployee)
	s.handle(mux, "GET /employees/{id}", "employees", true, s.employeeHandler.HandleGetEmployee)
	s.handle(mux, "POST /employees/{id}/events", "employee_events", true, s.employeeHandler.HandleCreateEvent)

	s.handle(mux, "POST /google_meet_employee_map/{email...}", "meet_map", true, s.meetMapHandler.HandleUpsert)
	s.handle(mux, "GET /google_meet_employee_map/{email...}", "meet_map", true, s.meetMapHandler.HandleGet)

	s.handle(mux, "POST /meeting-summary/meeting", "meeting_summary", true, s.summaryHandler.HandleSummarize)
}

// handle wraps h with request context, metrics and, for protected routes,
// the auth gate, and registers it under pattern.
func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, protected bool, h http.HandlerFunc) {
	if protected {
		h = AuthMiddleware(h, s.authKey, s.logger)
	}
	mux.HandleFunc(pattern, RequestMiddleware(MetricsMiddleware(h, endpoint), endpoint, s.logger))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Set only for safety blocked summaries.
	Details       string   `json:"details,omitempty"`
	SafetyRatings []string `json:"safety_ratings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
