package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/summary"
)

func TestStore(t *testing.T) {
	Convey("Given a store over a mock pool", t, func() {
		mock, err := pgxmock.NewPool()
		So(err, ShouldBeNil)
		closed := false
		store := New(mock, func() { closed = true; mock.Close() })
		ctx := context.Background()
		role := "engineer"
		at := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)

		Convey("When an employee row exists", func() {
			mock.ExpectQuery(`SELECT id, name, email, role, delete_flag\s+FROM employees`).
				WithArgs("e1").
				WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "role", "delete_flag"}).
					AddRow("e1", "Hanako", "h@example.com", &role, false))

			e, err := store.GetEmployee(ctx, "e1")

			Convey("Then it is scanned", func() {
				So(err, ShouldBeNil)
				So(e.Name, ShouldEqual, "Hanako")
				So(*e.Role, ShouldEqual, "engineer")
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When no employee row exists", func() {
			mock.ExpectQuery(`FROM employees`).
				WithArgs("missing").
				WillReturnError(pgx.ErrNoRows)

			_, err := store.GetEmployee(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an employee is written", func() {
			mock.ExpectExec(`INSERT INTO employees`).
				WithArgs("e1", "Hanako", "h@example.com", &role, false).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			err := store.PutEmployee(ctx, model.Employee{ID: "e1", Name: "Hanako", Email: "h@example.com", Role: &role})

			Convey("Then the upsert runs", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When an event is inserted", func() {
			mock.ExpectQuery(`INSERT INTO employee_event`).
				WithArgs("e1", "training", "course", at, `{"a":1}`, at, at).
				WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

			id, err := store.InsertEvent(ctx, model.EmployeeEvent{
				EmployeeID:  "e1",
				EventType:   "training",
				Description: "course",
				Timestamp:   at,
				Details:     json.RawMessage(`{"a":1}`),
				CreatedAt:   at,
				UpdatedAt:   at,
			})

			Convey("Then the sequence id is returned as text", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "42")
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the parent employee is missing", func() {
			mock.ExpectQuery(`INSERT INTO employee_event`).
				WithArgs("ghost", "x", "y", at, nil, at, at).
				WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

			_, err := store.InsertEvent(ctx, model.EmployeeEvent{
				EmployeeID: "ghost", EventType: "x", Description: "y",
				Timestamp: at, CreatedAt: at, UpdatedAt: at,
			})

			Convey("Then the violation maps to ErrNotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a mapping is written and read", func() {
			mock.ExpectExec(`INSERT INTO google_meet_employee_map`).
				WithArgs("h@example.com", "Hanako").
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectQuery(`FROM google_meet_employee_map`).
				WithArgs("h@example.com").
				WillReturnRows(pgxmock.NewRows([]string{"email", "google_meet_name"}).AddRow("h@example.com", "Hanako"))

			err := store.PutMeetMapping(ctx, model.MeetMapping{Email: "h@example.com", GoogleMeetName: "Hanako"})
			So(err, ShouldBeNil)
			m, err := store.GetMeetMapping(ctx, "h@example.com")

			Convey("Then the mapping comes back", func() {
				So(err, ShouldBeNil)
				So(m.GoogleMeetName, ShouldEqual, "Hanako")
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When a summary is saved", func() {
			s := summary.Summary{EmployeeName: "Hanako", Decisions: []summary.Decision{}, ActionItems: []summary.ActionItem{}}
			doc, _ := json.Marshal(s)
			mock.ExpectExec(`INSERT INTO meeting_summaries`).
				WithArgs("1on1_20240101_010000_000000", string(doc), at).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			err := store.PutSummary(ctx, summary.Record{ID: "1on1_20240101_010000_000000", Summary: s, CreatedAt: at})

			Convey("Then the document is stored as JSON", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then the pool is released", func() {
				So(closed, ShouldBeTrue)
			})
		})
	})
}

func TestTranslatePgError(t *testing.T) {
	Convey("Given driver errors", t, func() {
		Convey("Then nil stays nil", func() {
			So(translatePgError(nil), ShouldBeNil)
		})
		Convey("Then other codes pass through", func() {
			pgErr := &pgconn.PgError{Code: "23505"}
			So(translatePgError(pgErr), ShouldEqual, pgErr)
		})
	})
}
