// Package datastore implements repository.Store on Google Cloud Datastore.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

// Store talks to Datastore through one shared client.
type Store struct {
	client *datastore.Client
}

var _ repository.Store = (*Store)(nil)

// Open creates a client for projectID. An empty projectID is detected from
// the environment (GOOGLE_CLOUD_PROJECT, credentials or the metadata server).
// DATASTORE_EMULATOR_HOST is honored by the client library.
func Open(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		projectID = datastore.DetectProjectID
	}
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("datastore: new client: %w", err)
	}
	return &Store{client: client}, nil
}

// New wraps an existing client.
func New(client *datastore.Client) *Store {
	return &Store{client: client}
}

func employeeKey(id string) *datastore.Key {
	return datastore.NameKey(model.KindEmployee, id, nil)
}

func translate(err error) error {
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return repository.ErrNotFound
	}
	return err
}

// GetEmployee implements repository.Store.
func (s *Store) GetEmployee(ctx context.Context, id string) (e model.Employee, err error) {
	defer repository.Observe(model.KindEmployee, "get", time.Now(), &err)

	var ent employeeEntity
	if err := s.client.Get(ctx, employeeKey(id), &ent); err != nil {
		return model.Employee{}, translate(err)
	}
	return ent.toModel(id), nil
}

// PutEmployee implements repository.Store.
func (s *Store) PutEmployee(ctx context.Context, e model.Employee) (err error) {
	defer repository.Observe(model.KindEmployee, "put", time.Now(), &err)

	_, err = s.client.Put(ctx, employeeKey(e.ID), toEmployeeEntity(e))
	return err
}

// InsertEvent implements repository.Store. Datastore allocates the numeric
// id of the incomplete child key on put.
func (s *Store) InsertEvent(ctx context.Context, ev model.EmployeeEvent) (id string, err error) {
	defer repository.Observe(model.KindEmployeeEvent, "insert", time.Now(), &err)

	key := datastore.IncompleteKey(model.KindEmployeeEvent, employeeKey(ev.EmployeeID))
	stored, err := s.client.Put(ctx, key, toEventEntity(ev))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(stored.ID, 10), nil
}

// GetEvent reads one event back by its parent and id.
func (s *Store) GetEvent(ctx context.Context, employeeID, eventID string) (model.EmployeeEvent, error) {
	n, err := strconv.ParseInt(eventID, 10, 64)
	if err != nil {
		return model.EmployeeEvent{}, repository.ErrNotFound
	}
	var ent eventEntity
	key := datastore.IDKey(model.KindEmployeeEvent, n, employeeKey(employeeID))
	if err := s.client.Get(ctx, key, &ent); err != nil {
		return model.EmployeeEvent{}, translate(err)
	}
	return ent.toModel(eventID), nil
}

// GetMeetMapping implements repository.Store.
func (s *Store) GetMeetMapping(ctx context.Context, email string) (m model.MeetMapping, err error) {
	defer repository.Observe(model.KindMeetMapping, "get", time.Now(), &err)

	var ent mappingEntity
	if err := s.client.Get(ctx, datastore.NameKey(model.KindMeetMapping, email, nil), &ent); err != nil {
		return model.MeetMapping{}, translate(err)
	}
	return model.MeetMapping{Email: email, GoogleMeetName: ent.GoogleMeetName}, nil
}

// PutMeetMapping implements repository.Store.
func (s *Store) PutMeetMapping(ctx context.Context, m model.MeetMapping) (err error) {
	defer repository.Observe(model.KindMeetMapping, "put", time.Now(), &err)

	ent := &mappingEntity{Email: m.Email, GoogleMeetName: m.GoogleMeetName}
	_, err = s.client.Put(ctx, datastore.NameKey(model.KindMeetMapping, m.Email, nil), ent)
	return err
}

// PutSummary implements repository.Store.
func (s *Store) PutSummary(ctx context.Context, r summary.Record) (err error) {
	defer repository.Observe(model.KindSummary, "put", time.Now(), &err)

	_, err = s.client.Put(ctx, datastore.NameKey(model.KindSummary, r.ID, nil), toSummaryEntity(r))
	return err
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
