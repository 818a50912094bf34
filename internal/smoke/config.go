package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	AuthKey    string        // Value sent as X-Auth-Key
	Timeout    time.Duration // HTTP request timeout
	EmployeeID string        // Employee the event checks run against
	Verbose    bool          // Debug logging
}

// Defaults.
const (
	DefaultBaseURL    = "http://127.0.0.1:8080"
	DefaultTimeout    = 30 * time.Second
	DefaultEmployeeID = "test_emp_for_event_001"
)

// EmployeeRequest is the body of POST /employees/{id}.
type EmployeeRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       *string `json:"role,omitempty"`
	DeleteFlag bool    `json:"delete_flag"`
}

// EventRequest is the body of POST /employees/{id}/events.
type EventRequest struct {
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Event is the response of POST /employees/{id}/events.
type Event struct {
	EventID     string         `json:"event_id"`
	EmployeeID  string         `json:"employee_id"`
	Timestamp   string         `json:"timestamp"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// MeetMapping is the body and response of the mapping endpoints.
type MeetMapping struct {
	Email          string `json:"email,omitempty"`
	GoogleMeetName string `json:"google_meet_name"`
}

// SummaryRequest is the body of POST /meeting-summary/meeting.
type SummaryRequest struct {
	TranscriptContent string `json:"transcript_content"`
	SaveToFirestore   bool   `json:"save_to_firestore"`
}

// Stats counts check outcomes of a run.
type Stats struct {
	Passed    int
	Failed    int
	StartTime time.Time
	Duration  time.Duration
}
