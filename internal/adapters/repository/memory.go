package repository

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

// MemoryStore is an in-process Store. It backs local runs and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[string]model.Employee
	events    map[string][]model.EmployeeEvent // keyed by employee id
	mappings  map[string]model.MeetMapping
	summaries map[string]summary.Record
	nextID    int64
	closed    bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store. Event ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[string]model.Employee),
		events:    make(map[string][]model.EmployeeEvent),
		mappings:  make(map[string]model.MeetMapping),
		summaries: make(map[string]summary.Record),
		nextID:    1,
	}
}

// GetEmployee implements Store.GetEmployee.
func (s *MemoryStore) GetEmployee(_ context.Context, id string) (e model.Employee, err error) {
	defer Observe(model.KindEmployee, "get", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Employee{}, ErrClosed
	}
	e, ok := s.employees[id]
	if !ok {
		return model.Employee{}, ErrNotFound
	}
	return e, nil
}

// PutEmployee implements Store.PutEmployee.
func (s *MemoryStore) PutEmployee(_ context.Context, e model.Employee) (err error) {
	defer Observe(model.KindEmployee, "put", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.employees[e.ID] = e
	return nil
}

// InsertEvent implements Store.InsertEvent. The parent is not checked; the
// service reads it before inserting.
func (s *MemoryStore) InsertEvent(_ context.Context, ev model.EmployeeEvent) (id string, err error) {
	defer Observe(model.KindEmployeeEvent, "insert", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	ev.EventID = strconv.FormatInt(s.nextID, 10)
	s.nextID++
	if ev.Details != nil {
		ev.Details = slices.Clone(ev.Details)
	}
	s.events[ev.EmployeeID] = append(s.events[ev.EmployeeID], ev)
	return ev.EventID, nil
}

// Events returns copies of the events stored under employeeID in insertion order.
func (s *MemoryStore) Events(_ context.Context, employeeID string) []model.EmployeeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[employeeID])
}

// GetMeetMapping implements Store.GetMeetMapping.
func (s *MemoryStore) GetMeetMapping(_ context.Context, email string) (m model.MeetMapping, err error) {
	defer Observe(model.KindMeetMapping, "get", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.MeetMapping{}, ErrClosed
	}
	m, ok := s.mappings[email]
	if !ok {
		return model.MeetMapping{}, ErrNotFound
	}
	return m, nil
}

// PutMeetMapping implements Store.PutMeetMapping.
func (s *MemoryStore) PutMeetMapping(_ context.Context, m model.MeetMapping) (err error) {
	defer Observe(model.KindMeetMapping, "put", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.mappings[m.Email] = m
	return nil
}

// PutSummary implements Store.PutSummary.
func (s *MemoryStore) PutSummary(_ context.Context, r summary.Record) (err error) {
	defer Observe(model.KindSummary, "put", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.summaries[r.ID] = r
	return nil
}

// Summary returns the stored summary with id.
func (s *MemoryStore) Summary(_ context.Context, id string) (summary.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.summaries[id]
	return r, ok
}

// Count returns the number of records of kind.
func (s *MemoryStore) Count(_ context.Context, kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case model.KindEmployee:
		return len(s.employees)
	case model.KindEmployeeEvent:
		n := 0
		for _, evs := range s.events {
			n += len(evs)
		}
		return n
	case model.KindMeetMapping:
		return len(s.mappings)
	case model.KindSummary:
		return len(s.summaries)
	default:
		return 0
	}
}

// Close makes every later call fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
