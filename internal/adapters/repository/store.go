// Package repository defines the document store interface shared by the
// memory, Datastore and Postgres backends.
package repository

import (
	"context"

	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

// Store is point get/put by kind and key, plus id allocation for events
// scoped under their parent employee. No operation spans more than one write.
type Store interface {
	// GetEmployee returns ErrNotFound when no employee has id.
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
	// PutEmployee writes e under e.ID, replacing any existing record.
	PutEmployee(ctx context.Context, e model.Employee) error

	// InsertEvent allocates a new id under the parent employee, persists ev
	// and returns the id.
	InsertEvent(ctx context.Context, ev model.EmployeeEvent) (string, error)

	// GetMeetMapping returns ErrNotFound when email has no mapping.
	GetMeetMapping(ctx context.Context, email string) (model.MeetMapping, error)
	// PutMeetMapping creates or replaces the mapping for m.Email.
	PutMeetMapping(ctx context.Context, m model.MeetMapping) error

	// PutSummary persists a generated meeting summary under r.ID.
	PutSummary(ctx context.Context, r summary.Record) error

	Close() error
}
