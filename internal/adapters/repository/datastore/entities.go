package datastore

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

// Property names follow the records written by earlier deployments.

// employeeEntity stores an absent role as a null property so that an empty
// role survives the round trip.
type employeeEntity struct {
	ID         string
	Name       string
	Email      string
	Role       *string
	DeleteFlag bool
}

var _ datastore.PropertyLoadSaver = (*employeeEntity)(nil)

func toEmployeeEntity(e model.Employee) *employeeEntity {
	return &employeeEntity{ID: e.ID, Name: e.Name, Email: e.Email, Role: e.Role, DeleteFlag: e.DeleteFlag}
}

func (ent *employeeEntity) toModel(id string) model.Employee {
	return model.Employee{ID: id, Name: ent.Name, Email: ent.Email, Role: ent.Role, DeleteFlag: ent.DeleteFlag}
}

// Save implements datastore.PropertyLoadSaver.
func (ent *employeeEntity) Save() ([]datastore.Property, error) {
	var role any
	if ent.Role != nil {
		role = *ent.Role
	}
	return []datastore.Property{
		{Name: "id", Value: ent.ID},
		{Name: "name", Value: ent.Name},
		{Name: "email", Value: ent.Email},
		{Name: "role", Value: role},
		{Name: "delete_flag", Value: ent.DeleteFlag},
	}, nil
}

// Load implements datastore.PropertyLoadSaver. A missing or null role
// loads as nil.
func (ent *employeeEntity) Load(ps []datastore.Property) error {
	for _, p := range ps {
		switch p.Name {
		case "id":
			ent.ID, _ = p.Value.(string)
		case "name":
			ent.Name, _ = p.Value.(string)
		case "email":
			ent.Email, _ = p.Value.(string)
		case "role":
			if role, ok := p.Value.(string); ok {
				ent.Role = &role
			}
		case "delete_flag":
			ent.DeleteFlag, _ = p.Value.(bool)
		}
	}
	return nil
}

type eventEntity struct {
	EmployeeID  string    `datastore:"employee_id"`
	EventType   string    `datastore:"event_type"`
	Description string    `datastore:"description,noindex"`
	Timestamp   time.Time `datastore:"timestamp"`
	// Details holds serialized JSON; empty when the event has none.
	Details   string    `datastore:"details,noindex"`
	CreatedAt time.Time `datastore:"created_at"`
	UpdatedAt time.Time `datastore:"updated_at"`
}

func toEventEntity(ev model.EmployeeEvent) *eventEntity {
	return &eventEntity{
		EmployeeID:  ev.EmployeeID,
		EventType:   ev.EventType,
		Description: ev.Description,
		Timestamp:   ev.Timestamp,
		Details:     string(ev.Details),
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

func (ent *eventEntity) toModel(id string) model.EmployeeEvent {
	ev := model.EmployeeEvent{
		EventID:     id,
		EmployeeID:  ent.EmployeeID,
		EventType:   ent.EventType,
		Description: ent.Description,
		Timestamp:   ent.Timestamp.UTC(),
		CreatedAt:   ent.CreatedAt.UTC(),
		UpdatedAt:   ent.UpdatedAt.UTC(),
	}
	if ent.Details != "" {
		ev.Details = json.RawMessage(ent.Details)
	}
	return ev
}

type mappingEntity struct {
	Email          string `datastore:"email"`
	GoogleMeetName string `datastore:"google_meet_name"`
}

type decisionEntity struct {
	Item                   string `datastore:"item,noindex"`
	DiscussionSummary      string `datastore:"discussion_summary,noindex"`
	SourceUtteranceIndices []int  `datastore:"source_utterance_indices,noindex"`
}

type actionItemEntity struct {
	Action   string `datastore:"action,noindex"`
	Assignee string `datastore:"assignee"`
	DueDate  string `datastore:"due_date,omitempty"`
}

type summaryEntity struct {
	MeetingDate    string             `datastore:"meeting_date"`
	EmployeeName   string             `datastore:"employee_name"`
	Purpose        string             `datastore:"purpose,noindex"`
	Decisions      []decisionEntity   `datastore:"decisions,noindex"`
	ActionItems    []actionItemEntity `datastore:"action_items,noindex"`
	OverallSummary string             `datastore:"overall_summary,noindex"`
	CreatedAt      time.Time          `datastore:"createdAt"`
}

func toSummaryEntity(r summary.Record) *summaryEntity {
	s := r.Summary
	ent := &summaryEntity{
		MeetingDate:    s.MeetingDate,
		EmployeeName:   s.EmployeeName,
		Purpose:        s.Purpose,
		OverallSummary: s.OverallSummary,
		CreatedAt:      r.CreatedAt,
	}
	for _, d := range s.Decisions {
		ent.Decisions = append(ent.Decisions, decisionEntity{
			Item:                   d.Item,
			DiscussionSummary:      d.DiscussionSummary,
			SourceUtteranceIndices: d.SourceUtteranceIndices,
		})
	}
	for _, a := range s.ActionItems {
		item := actionItemEntity{Action: a.Action, Assignee: a.Assignee}
		if a.DueDate != nil {
			item.DueDate = *a.DueDate
		}
		ent.ActionItems = append(ent.ActionItems, item)
	}
	return ent
}
