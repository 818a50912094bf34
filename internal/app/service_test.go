package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	service "github.com/okian/staffnote/internal/app"
	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/domain/instant"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/payload"
	"github.com/okian/staffnote/internal/domain/summary"
	"github.com/okian/staffnote/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2024, 3, 5, 6, 7, 8, 123456789, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeExtractor struct {
	summary *summary.Summary
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*summary.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type fakeNotifier struct {
	posted []string
	err    error
}

func (f *fakeNotifier) Post(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, text)
	return nil
}

// failingStore fails every write.
type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) PutEmployee(context.Context, model.Employee) error {
	return errors.New("datastore unavailable")
}

func (failingStore) PutSummary(context.Context, summary.Record) error {
	return errors.New("datastore unavailable")
}

func sampleSummary() *summary.Summary {
	return &summary.Summary{
		MeetingDate:  "2024-03-05",
		EmployeeName: "Hanako",
		Purpose:      "quarterly check-in",
		Decisions: []summary.Decision{
			{Item: "move to the payments team", SourceUtteranceIndices: []int{}},
		},
		ActionItems:    []summary.ActionItem{{Action: "draft handover", Assignee: "Hanako"}},
		OverallSummary: "Good quarter.",
	}
}

func TestService_Employees(t *testing.T) {
	Convey("Given a service backed by the memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := service.New(service.WithStore(store), service.WithClock(fixedClock))
		role := "engineer"

		Convey("When creating an employee", func() {
			created, err := svc.CreateEmployee(ctx, "e1", service.EmployeeInput{Name: "Hanako", Email: "h@example.com", Role: &role})

			Convey("Then it should be returned with its id", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldEqual, "e1")
				So(created.DeleteFlag, ShouldBeFalse)
			})

			Convey("And reading it back should return the same record", func() {
				got, err := svc.GetEmployee(ctx, "e1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, created)
			})

			Convey("And creating it again should conflict and keep the original", func() {
				_, err := svc.CreateEmployee(ctx, "e1", service.EmployeeInput{Name: "Taro", Email: "t@example.com"})
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)

				got, err := svc.GetEmployee(ctx, "e1")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Hanako")
			})
		})

		Convey("When a required field is blank", func() {
			_, err := svc.CreateEmployee(ctx, "e2", service.EmployeeInput{Name: "  ", Email: "x@example.com"})

			Convey("Then a validation error names the field and nothing is written", func() {
				So(errors.Is(err, payload.ErrInvalid), ShouldBeTrue)
				So(payload.FieldOf(err), ShouldEqual, "name")
				So(store.Count(ctx, model.KindEmployee), ShouldEqual, 0)
			})
		})

		Convey("When reading an unknown employee", func() {
			_, err := svc.GetEmployee(ctx, "missing")

			Convey("Then it should be not found", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the store rejects the write", func() {
			svc := service.New(service.WithStore(failingStore{store}))
			_, err := svc.CreateEmployee(ctx, "e3", service.EmployeeInput{Name: "Jiro", Email: "j@example.com"})

			Convey("Then the error should be an upstream failure", func() {
				So(errors.Is(err, service.ErrUpstream), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without a store", t, func() {
		svc := service.New()

		Convey("Then store operations should report it", func() {
			_, err := svc.GetEmployee(context.Background(), "e1")
			So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
		})
	})
}

func TestService_CreateEvent(t *testing.T) {
	Convey("Given an existing employee", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := service.New(service.WithStore(store), service.WithClock(fixedClock))
		_, err := svc.CreateEmployee(ctx, "e1", service.EmployeeInput{Name: "Hanako", Email: "h@example.com"})
		So(err, ShouldBeNil)

		Convey("When creating an event without a timestamp", func() {
			ev, err := svc.CreateEvent(ctx, "e1", service.EventInput{EventType: "1on1", Description: "weekly"})

			Convey("Then the timestamp defaults to now in UTC", func() {
				So(err, ShouldBeNil)
				So(ev.EventID, ShouldEqual, "1")
				So(ev.Timestamp, ShouldEqual, instant.Truncate(fixedNow))
				So(ev.CreatedAt, ShouldEqual, ev.UpdatedAt)
				So(instant.Format(ev.Timestamp), ShouldEqual, "2024-03-05T06:07:08.123456+00:00")
				So(ev.Details, ShouldBeNil)
			})

			Convey("And the event should be stored under the employee", func() {
				evs := store.Events(ctx, "e1")
				So(len(evs), ShouldEqual, 1)
				So(evs[0].EventID, ShouldEqual, ev.EventID)
			})
		})

		Convey("When the timestamp carries an offset", func() {
			ts := "2024-01-01T10:00:00+09:00"
			ev, err := svc.CreateEvent(ctx, "e1", service.EventInput{EventType: "1on1", Description: "weekly", Timestamp: &ts})

			Convey("Then it is converted to UTC", func() {
				So(err, ShouldBeNil)
				So(instant.Format(ev.Timestamp), ShouldEqual, "2024-01-01T01:00:00+00:00")
			})
		})

		Convey("When details are given", func() {
			ev, err := svc.CreateEvent(ctx, "e1", service.EventInput{
				EventType:   "feedback",
				Description: "peer review",
				Details:     json.RawMessage(`{"a":1}`),
			})

			Convey("Then they are kept as an object", func() {
				So(err, ShouldBeNil)
				So(string(ev.Details), ShouldEqual, `{"a":1}`)
			})
		})

		Convey("When the timestamp cannot be parsed", func() {
			ts := "yesterday"
			_, err := svc.CreateEvent(ctx, "e1", service.EventInput{EventType: "1on1", Description: "weekly", Timestamp: &ts})

			Convey("Then the timestamp field is rejected", func() {
				So(payload.FieldOf(err), ShouldEqual, instant.Field)
				So(store.Count(ctx, model.KindEmployeeEvent), ShouldEqual, 0)
			})
		})

		Convey("When the employee does not exist", func() {
			_, err := svc.CreateEvent(ctx, "ghost", service.EventInput{EventType: "1on1", Description: "weekly"})

			Convey("Then it is not found and nothing is written", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx, model.KindEmployeeEvent), ShouldEqual, 0)
			})
		})

		Convey("When input is invalid and the employee does not exist", func() {
			_, err := svc.CreateEvent(ctx, "ghost", service.EventInput{EventType: "1on1"})

			Convey("Then validation wins", func() {
				So(payload.FieldOf(err), ShouldEqual, "description")
			})
		})
	})
}

func TestService_MeetMappings(t *testing.T) {
	Convey("Given a service backed by the memory store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewMemoryStore()))

		Convey("When upserting the same email twice", func() {
			_, err := svc.UpsertMeetMapping(ctx, "h@example.com", "Hanako Y")
			So(err, ShouldBeNil)
			m, err := svc.UpsertMeetMapping(ctx, "h@example.com", "  Hanako Yamada  ")

			Convey("Then both succeed and the second value is stored trimmed", func() {
				So(err, ShouldBeNil)
				So(m.GoogleMeetName, ShouldEqual, "Hanako Yamada")

				got, err := svc.GetMeetMapping(ctx, "h@example.com")
				So(err, ShouldBeNil)
				So(got.GoogleMeetName, ShouldEqual, "Hanako Yamada")
			})
		})

		Convey("When the name is whitespace only", func() {
			_, err := svc.UpsertMeetMapping(ctx, "h@example.com", "   ")

			Convey("Then the name field is rejected", func() {
				So(payload.FieldOf(err), ShouldEqual, "google_meet_name")
			})
		})

		Convey("When reading an unknown email", func() {
			_, err := svc.GetMeetMapping(ctx, "nobody@example.com")

			Convey("Then it should be not found", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_SummarizeMeeting(t *testing.T) {
	Convey("Given a service with an extractor and a notifier", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		extractor := &fakeExtractor{summary: sampleSummary()}
		notifier := &fakeNotifier{}
		svc := service.New(
			service.WithStore(store),
			service.WithExtractor(extractor),
			service.WithNotifier(notifier),
			service.WithClock(fixedClock),
		)

		Convey("When summarizing without saving", func() {
			res, err := svc.SummarizeMeeting(ctx, "A: hello\nB: hi", false)

			Convey("Then the summary is posted but not stored", func() {
				So(err, ShouldBeNil)
				So(res.Saved(), ShouldBeFalse)
				So(res.Posted, ShouldBeTrue)
				So(len(notifier.posted), ShouldEqual, 1)
				So(notifier.posted[0], ShouldContainSubstring, "Hanako")
				So(store.Count(ctx, model.KindSummary), ShouldEqual, 0)
			})
		})

		Convey("When summarizing with saving", func() {
			res, err := svc.SummarizeMeeting(ctx, "A: hello", true)

			Convey("Then it is stored under a time derived id", func() {
				So(err, ShouldBeNil)
				So(res.ID, ShouldEqual, "1on1_20240305_060708_123456")
				rec, ok := store.Summary(ctx, res.ID)
				So(ok, ShouldBeTrue)
				So(rec.Summary.EmployeeName, ShouldEqual, "Hanako")
				So(rec.CreatedAt.Location(), ShouldEqual, time.UTC)
			})
		})

		Convey("When the transcript is blank", func() {
			_, err := svc.SummarizeMeeting(ctx, " ", false)

			Convey("Then the model is not called", func() {
				So(payload.FieldOf(err), ShouldEqual, "transcript_content")
				So(extractor.calls, ShouldEqual, 0)
			})
		})

		Convey("When the model blocks the transcript", func() {
			extractor.err = &summary.SafetyBlockError{Reason: "SAFETY", Ratings: []string{"HARM_CATEGORY_HARASSMENT: HIGH"}}
			extractor.summary = nil
			_, err := svc.SummarizeMeeting(ctx, "A: hello", true)

			Convey("Then the safety error is returned as is and nothing is posted", func() {
				var blocked *summary.SafetyBlockError
				So(errors.As(err, &blocked), ShouldBeTrue)
				So(blocked.Reason, ShouldEqual, "SAFETY")
				So(len(notifier.posted), ShouldEqual, 0)
			})
		})

		Convey("When the model replies with text", func() {
			extractor.err = &summary.TextReplyError{Text: "I cannot"}
			_, err := svc.SummarizeMeeting(ctx, "A: hello", false)

			Convey("Then the extraction kind is kept", func() {
				So(errors.Is(err, summary.ErrTextReply), ShouldBeTrue)
				So(errors.Is(err, service.ErrUpstream), ShouldBeFalse)
			})
		})

		Convey("When the model call fails", func() {
			extractor.err = errors.New("connection reset")
			_, err := svc.SummarizeMeeting(ctx, "A: hello", false)

			Convey("Then it is an upstream failure", func() {
				So(errors.Is(err, service.ErrUpstream), ShouldBeTrue)
			})
		})

		Convey("When the chat post fails", func() {
			notifier.err = errors.New("channel_not_found")
			_, err := svc.SummarizeMeeting(ctx, "A: hello", true)

			Convey("Then it is an upstream failure and nothing is saved", func() {
				So(errors.Is(err, service.ErrUpstream), ShouldBeTrue)
				So(store.Count(ctx, model.KindSummary), ShouldEqual, 0)
			})
		})

		Convey("When the store rejects the summary", func() {
			svc := service.New(
				service.WithStore(failingStore{store}),
				service.WithExtractor(extractor),
				service.WithNotifier(notifier),
			)
			_, err := svc.SummarizeMeeting(ctx, "A: hello", true)

			Convey("Then it is an upstream failure", func() {
				So(errors.Is(err, service.ErrUpstream), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without a notifier or store", t, func() {
		svc := service.New(service.WithExtractor(&fakeExtractor{summary: sampleSummary()}))

		Convey("When summarizing without saving", func() {
			res, err := svc.SummarizeMeeting(context.Background(), "A: hello", false)

			Convey("Then the post is skipped and the summary returned", func() {
				So(err, ShouldBeNil)
				So(res.Posted, ShouldBeFalse)
				So(res.Summary.Purpose, ShouldEqual, "quarterly check-in")
			})
		})

		Convey("When asked to save", func() {
			_, err := svc.SummarizeMeeting(context.Background(), "A: hello", true)

			Convey("Then it fails for the missing store", func() {
				So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without an extractor", t, func() {
		svc := service.New()

		Convey("Then summarizing fails", func() {
			_, err := svc.SummarizeMeeting(context.Background(), "A: hello", false)
			So(errors.Is(err, service.ErrNoSummary), ShouldBeTrue)
		})
	})
}
