// Package postgres implements repository.Store on PostgreSQL for
// self-hosted deployments.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

const foreignKeyViolationCode = "23503"

// Store runs every operation as a single statement; no transactions are opened.
type Store struct {
	db      Queryer
	closeFn func()
}

var _ repository.Store = (*Store)(nil)

// New wraps db. closeFn, when non-nil, runs on Close (e.g. pool.Close).
func New(db Queryer, closeFn func()) *Store {
	return &Store{db: db, closeFn: closeFn}
}

// GetEmployee implements repository.Store.
func (s *Store) GetEmployee(ctx context.Context, id string) (e model.Employee, err error) {
	defer repository.Observe(model.KindEmployee, "get", time.Now(), &err)

	row := s.db.QueryRow(ctx, `
        SELECT id, name, email, role, delete_flag
          FROM employees
         WHERE id = $1
    `, id)
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DeleteFlag); err != nil {
		return model.Employee{}, translatePgError(err)
	}
	return e, nil
}

// PutEmployee implements repository.Store.
func (s *Store) PutEmployee(ctx context.Context, e model.Employee) (err error) {
	defer repository.Observe(model.KindEmployee, "put", time.Now(), &err)

	_, err = s.db.Exec(ctx, `
        INSERT INTO employees (id, name, email, role, delete_flag)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
           SET name = EXCLUDED.name,
               email = EXCLUDED.email,
               role = EXCLUDED.role,
               delete_flag = EXCLUDED.delete_flag
    `, e.ID, e.Name, e.Email, e.Role, e.DeleteFlag)
	return translatePgError(err)
}

// InsertEvent implements repository.Store. The id comes from the table's
// sequence; a missing parent surfaces as repository.ErrNotFound.
func (s *Store) InsertEvent(ctx context.Context, ev model.EmployeeEvent) (id string, err error) {
	defer repository.Observe(model.KindEmployeeEvent, "insert", time.Now(), &err)

	var details any
	if ev.Details != nil {
		details = string(ev.Details)
	}

	var n int64
	row := s.db.QueryRow(ctx, `
        INSERT INTO employee_event (employee_id, event_type, description, "timestamp", details, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, ev.EmployeeID, ev.EventType, ev.Description, ev.Timestamp, details, ev.CreatedAt, ev.UpdatedAt)
	if err := row.Scan(&n); err != nil {
		return "", translatePgError(err)
	}
	return strconv.FormatInt(n, 10), nil
}

// GetMeetMapping implements repository.Store.
func (s *Store) GetMeetMapping(ctx context.Context, email string) (m model.MeetMapping, err error) {
	defer repository.Observe(model.KindMeetMapping, "get", time.Now(), &err)

	row := s.db.QueryRow(ctx, `
        SELECT email, google_meet_name
          FROM google_meet_employee_map
         WHERE email = $1
    `, email)
	if err := row.Scan(&m.Email, &m.GoogleMeetName); err != nil {
		return model.MeetMapping{}, translatePgError(err)
	}
	return m, nil
}

// PutMeetMapping implements repository.Store.
func (s *Store) PutMeetMapping(ctx context.Context, m model.MeetMapping) (err error) {
	defer repository.Observe(model.KindMeetMapping, "put", time.Now(), &err)

	_, err = s.db.Exec(ctx, `
        INSERT INTO google_meet_employee_map (email, google_meet_name)
        VALUES ($1, $2)
        ON CONFLICT (email) DO UPDATE
           SET google_meet_name = EXCLUDED.google_meet_name
    `, m.Email, m.GoogleMeetName)
	return translatePgError(err)
}

// PutSummary implements repository.Store.
func (s *Store) PutSummary(ctx context.Context, r summary.Record) (err error) {
	defer repository.Observe(model.KindSummary, "put", time.Now(), &err)

	doc, err := json.Marshal(r.Summary)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO meeting_summaries (id, summary, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE
           SET summary = EXCLUDED.summary,
               created_at = EXCLUDED.created_at
    `, r.ID, string(doc), r.CreatedAt)
	return translatePgError(err)
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return repository.ErrNotFound
	}

	return err
}
