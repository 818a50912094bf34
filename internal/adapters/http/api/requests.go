package api

import (
	"encoding/json"
	"io"

	service "github.com/okian/staffnote/internal/app"
	"github.com/okian/staffnote/internal/domain/instant"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/payload"
	"github.com/okian/staffnote/internal/domain/summary"
)

// Request field names.
const (
	fieldName           = "name"
	fieldEmail          = "email"
	fieldRole           = "role"
	fieldDeleteFlag     = "delete_flag"
	fieldEventType      = "event_type"
	fieldDescription    = "description"
	fieldDetails        = "details"
	fieldMeetName       = "google_meet_name"
	fieldTranscript     = "transcript_content"
	fieldSaveToStore    = "save_to_firestore"
	pathEmployeeID      = "id"
	pathMeetMappingMail = "email"
)

func bindEmployee(body io.Reader) (service.EmployeeInput, error) {
	obj, err := payload.Decode(body)
	if err != nil {
		return service.EmployeeInput{}, err
	}
	var in service.EmployeeInput
	if in.Name, err = obj.RequiredString(fieldName); err != nil {
		return service.EmployeeInput{}, err
	}
	if in.Email, err = obj.RequiredString(fieldEmail); err != nil {
		return service.EmployeeInput{}, err
	}
	if in.Role, err = obj.OptionalString(fieldRole); err != nil {
		return service.EmployeeInput{}, err
	}
	if in.DeleteFlag, err = obj.OptionalBool(fieldDeleteFlag); err != nil {
		return service.EmployeeInput{}, err
	}
	return in, nil
}

func bindEvent(body io.Reader) (service.EventInput, error) {
	obj, err := payload.Decode(body)
	if err != nil {
		return service.EventInput{}, err
	}
	var in service.EventInput
	if in.EventType, err = obj.RequiredString(fieldEventType); err != nil {
		return service.EventInput{}, err
	}
	if in.Description, err = obj.RequiredString(fieldDescription); err != nil {
		return service.EventInput{}, err
	}
	if in.Timestamp, err = obj.OptionalString(instant.Field); err != nil {
		return service.EventInput{}, err
	}
	// An empty timestamp means "now", like an absent one.
	if in.Timestamp != nil && *in.Timestamp == "" {
		in.Timestamp = nil
	}
	if in.Details, err = obj.OptionalObject(fieldDetails); err != nil {
		return service.EventInput{}, err
	}
	return in, nil
}

func bindMeetName(body io.Reader) (string, error) {
	obj, err := payload.Decode(body)
	if err != nil {
		return "", err
	}
	return obj.RequiredString(fieldMeetName)
}

type summaryRequest struct {
	transcript string
	save       bool
}

func bindSummary(body io.Reader) (summaryRequest, error) {
	obj, err := payload.Decode(body)
	if err != nil {
		return summaryRequest{}, err
	}
	var req summaryRequest
	if req.transcript, err = obj.RequiredString(fieldTranscript); err != nil {
		return summaryRequest{}, err
	}
	if req.save, err = obj.OptionalBool(fieldSaveToStore); err != nil {
		return summaryRequest{}, err
	}
	return req, nil
}

type employeeResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       *string `json:"role"`
	DeleteFlag bool    `json:"delete_flag"`
}

func newEmployeeResponse(e model.Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Role:       e.Role,
		DeleteFlag: e.DeleteFlag,
	}
}

type employeeCreatedResponse struct {
	Message string           `json:"message"`
	Data    employeeResponse `json:"data"`
}

type eventResponse struct {
	EventID     string          `json:"event_id"`
	EmployeeID  string          `json:"employee_id"`
	Timestamp   string          `json:"timestamp"`
	EventType   string          `json:"event_type"`
	Description string          `json:"description"`
	Details     json.RawMessage `json:"details"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func newEventResponse(ev model.EmployeeEvent) eventResponse {
	return eventResponse{
		EventID:     ev.EventID,
		EmployeeID:  ev.EmployeeID,
		Timestamp:   instant.Format(ev.Timestamp),
		EventType:   ev.EventType,
		Description: ev.Description,
		Details:     ev.Details,
		CreatedAt:   instant.Format(ev.CreatedAt),
		UpdatedAt:   instant.Format(ev.UpdatedAt),
	}
}

type meetMappingResponse struct {
	Message        string `json:"message,omitempty"`
	Email          string `json:"email"`
	GoogleMeetName string `json:"google_meet_name"`
}

type summaryResponse struct {
	Message   string           `json:"message"`
	Summary   *summary.Summary `json:"summary"`
	SummaryID string           `json:"summary_id,omitempty"`
}
