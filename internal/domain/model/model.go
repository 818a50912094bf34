// Package model contains the records persisted by the service.
package model

import (
	"encoding/json"
	"time"
)

// Store kinds. Names match the collections of the existing deployment.
const (
	KindEmployee      = "employees"
	KindEmployeeEvent = "employee_event"
	KindMeetMapping   = "google_meet_employee_map"
	KindSummary       = "1on1_summaries"
)

// Employee is keyed by the caller supplied ID and never overwritten.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Role       *string
	DeleteFlag bool
}

// EmployeeEvent is a child of an Employee. EventID is allocated by the store.
type EmployeeEvent struct {
	EventID     string
	EmployeeID  string
	EventType   string
	Description string
	Timestamp   time.Time
	// Details is the compact JSON text of an object, nil when absent.
	Details   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MeetMapping links an employee email to their Google Meet display name.
type MeetMapping struct {
	Email          string
	GoogleMeetName string
}
