// Package service implements the staffnote operations behind the HTTP API:
// employee records, their events, Google Meet name mappings and meeting
// summaries.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/domain/instant"
	"github.com/okian/staffnote/internal/domain/model"
	"github.com/okian/staffnote/internal/domain/payload"
	"github.com/okian/staffnote/internal/domain/summary"
	"github.com/okian/staffnote/pkg/logger"
	"github.com/okian/staffnote/pkg/metrics"
	"github.com/okian/staffnote/pkg/tracing"
)

// Extractor turns a transcript into a structured summary.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*summary.Summary, error)
}

// Notifier posts rendered text to a chat channel.
type Notifier interface {
	Post(ctx context.Context, text string) error
}

// Service holds the collaborators every operation needs. Any of them may be
// nil; operations that need a missing one fail with ErrNoStore or
// ErrNoSummary, and a missing notifier only skips the chat post.
type Service struct {
	store     repository.Store
	extractor Extractor
	notifier  Notifier
	now       func() time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithExtractor sets the summary extractor.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithNotifier sets where generated summaries are posted.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EmployeeInput is a validated create-employee request.
type EmployeeInput struct {
	Name       string
	Email      string
	Role       *string
	DeleteFlag bool
}

// EventInput is a validated create-event request. Timestamp is the raw
// client value, nil when absent.
type EventInput struct {
	EventType   string
	Description string
	Timestamp   *string
	Details     json.RawMessage
}

// SummaryResult is what SummarizeMeeting produced. ID is set only when the
// summary was saved.
type SummaryResult struct {
	Summary *summary.Summary
	ID      string
	Posted  bool
}

// Saved reports whether the summary was persisted.
func (r SummaryResult) Saved() bool { return r.ID != "" }

// CreateEmployee stores a new employee under id. An existing record is left
// untouched and ErrConflict returned. The existence check and the write are
// separate calls, so two concurrent creates for one id can both succeed and
// the later write wins.
func (s *Service) CreateEmployee(ctx context.Context, id string, in EmployeeInput) (_ model.Employee, err error) {
	ctx, span := tracing.Start(ctx, "service.CreateEmployee", trace.WithAttributes(attribute.String("employee.id", id)))
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("id", id); err != nil {
		return model.Employee{}, err
	}
	if err := requireNonBlank("name", in.Name); err != nil {
		return model.Employee{}, err
	}
	if err := requireNonBlank("email", in.Email); err != nil {
		return model.Employee{}, err
	}
	if s.store == nil {
		return model.Employee{}, ErrNoStore
	}

	_, err = s.store.GetEmployee(ctx, id)
	switch {
	case err == nil:
		metrics.RecordEmployeeConflict()
		return model.Employee{}, fmt.Errorf("employee %q: %w", id, ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return model.Employee{}, s.upstream(ctx, "read employee", err)
	}

	e := model.Employee{
		ID:         id,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		DeleteFlag: in.DeleteFlag,
	}
	if err := s.store.PutEmployee(ctx, e); err != nil {
		return model.Employee{}, s.upstream(ctx, "write employee", err)
	}

	metrics.RecordEmployeeCreated()
	s.logger.Info(ctx, "employee created", logger.String("employee_id", id))
	return e, nil
}

// GetEmployee returns the employee stored under id.
func (s *Service) GetEmployee(ctx context.Context, id string) (_ model.Employee, err error) {
	ctx, span := tracing.Start(ctx, "service.GetEmployee", trace.WithAttributes(attribute.String("employee.id", id)))
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("id", id); err != nil {
		return model.Employee{}, err
	}
	if s.store == nil {
		return model.Employee{}, ErrNoStore
	}

	e, err := s.store.GetEmployee(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Employee{}, fmt.Errorf("employee %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Employee{}, s.upstream(ctx, "read employee", err)
	}
	return e, nil
}

// CreateEvent records an event under an existing employee. Input is checked
// before the parent is read, and nothing is written when the parent is missing.
func (s *Service) CreateEvent(ctx context.Context, employeeID string, in EventInput) (_ model.EmployeeEvent, err error) {
	ctx, span := tracing.Start(ctx, "service.CreateEvent", trace.WithAttributes(
		attribute.String("employee.id", employeeID),
		attribute.String("event.type", in.EventType),
	))
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("id", employeeID); err != nil {
		return model.EmployeeEvent{}, err
	}
	if err := requireNonBlank("event_type", in.EventType); err != nil {
		return model.EmployeeEvent{}, err
	}
	if err := requireNonBlank("description", in.Description); err != nil {
		return model.EmployeeEvent{}, err
	}
	var at *time.Time
	if in.Timestamp != nil {
		t, err := instant.Parse(*in.Timestamp)
		if err != nil {
			return model.EmployeeEvent{}, err
		}
		at = &t
	}
	if s.store == nil {
		return model.EmployeeEvent{}, ErrNoStore
	}

	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.EmployeeEvent{}, fmt.Errorf("employee %q: %w", employeeID, ErrNotFound)
		}
		return model.EmployeeEvent{}, s.upstream(ctx, "read employee", err)
	}

	now := instant.Truncate(s.now())
	ev := model.EmployeeEvent{
		EmployeeID:  employeeID,
		EventType:   in.EventType,
		Description: in.Description,
		Timestamp:   now,
		Details:     in.Details,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if at != nil {
		ev.Timestamp = *at
	}

	id, err := s.store.InsertEvent(ctx, ev)
	if err != nil {
		return model.EmployeeEvent{}, s.upstream(ctx, "write event", err)
	}
	ev.EventID = id

	metrics.RecordEventCreated(ev.EventType)
	s.logger.Info(ctx, "employee event created",
		logger.String("employee_id", employeeID),
		logger.String("event_id", id),
		logger.String("event_type", ev.EventType))
	return ev, nil
}

// UpsertMeetMapping creates or replaces the Google Meet name for email. The
// name is stored trimmed.
func (s *Service) UpsertMeetMapping(ctx context.Context, email, name string) (_ model.MeetMapping, err error) {
	ctx, span := tracing.Start(ctx, "service.UpsertMeetMapping")
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("email", email); err != nil {
		return model.MeetMapping{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.MeetMapping{}, payload.Invalid("google_meet_name", "must be a non-empty string")
	}
	if s.store == nil {
		return model.MeetMapping{}, ErrNoStore
	}

	m := model.MeetMapping{Email: email, GoogleMeetName: name}
	if err := s.store.PutMeetMapping(ctx, m); err != nil {
		return model.MeetMapping{}, s.upstream(ctx, "write meet mapping", err)
	}

	metrics.RecordMappingUpserted()
	s.logger.Info(ctx, "meet mapping saved", logger.String("email", email))
	return m, nil
}

// GetMeetMapping returns the mapping stored for email.
func (s *Service) GetMeetMapping(ctx context.Context, email string) (_ model.MeetMapping, err error) {
	ctx, span := tracing.Start(ctx, "service.GetMeetMapping")
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("email", email); err != nil {
		return model.MeetMapping{}, err
	}
	if s.store == nil {
		return model.MeetMapping{}, ErrNoStore
	}

	m, err := s.store.GetMeetMapping(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.MeetMapping{}, fmt.Errorf("meet mapping %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return model.MeetMapping{}, s.upstream(ctx, "read meet mapping", err)
	}
	return m, nil
}

// SummarizeMeeting extracts a summary from transcript, posts it to the chat
// channel and, when save is set, persists it.
func (s *Service) SummarizeMeeting(ctx context.Context, transcript string, save bool) (_ SummaryResult, err error) {
	ctx, span := tracing.Start(ctx, "service.SummarizeMeeting", trace.WithAttributes(
		attribute.Int("transcript.length", len(transcript)),
		attribute.Bool("summary.save", save),
	))
	defer span.End()
	defer func() { _ = tracing.RecordError(span, err) }()

	if err := requireNonBlank("transcript_content", transcript); err != nil {
		return SummaryResult{}, err
	}
	if s.extractor == nil {
		return SummaryResult{}, ErrNoSummary
	}

	sum, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		var blocked *summary.SafetyBlockError
		if errors.As(err, &blocked) {
			s.logger.Warn(ctx, "summary blocked by safety filters",
				logger.String("reason", blocked.Reason),
				logger.Any("ratings", blocked.Ratings))
			return SummaryResult{}, err
		}
		s.logger.Error(ctx, "summary extraction failed", logger.Error(err))
		if isExtractionKind(err) {
			return SummaryResult{}, err
		}
		return SummaryResult{}, fmt.Errorf("%w: extract summary: %w", ErrUpstream, err)
	}
	metrics.RecordSummaryGenerated()

	res := SummaryResult{Summary: sum}

	if s.notifier == nil {
		metrics.RecordNotificationSkipped()
		s.logger.Warn(ctx, "chat notifier not configured, summary not posted")
	} else {
		if err := s.notifier.Post(ctx, summary.Format(sum)); err != nil {
			return SummaryResult{}, s.upstream(ctx, "post summary", err)
		}
		res.Posted = true
	}

	if !save {
		return res, nil
	}
	if s.store == nil {
		return SummaryResult{}, ErrNoStore
	}

	now := s.now()
	rec := summary.Record{
		ID:        summary.NewID(now),
		Summary:   *sum,
		CreatedAt: instant.Truncate(now),
	}
	if err := s.store.PutSummary(ctx, rec); err != nil {
		return SummaryResult{}, s.upstream(ctx, "write summary", err)
	}
	res.ID = rec.ID

	metrics.RecordSummarySaved()
	s.logger.Info(ctx, "meeting summary saved", logger.String("summary_id", rec.ID))
	return res, nil
}

// upstream logs err and wraps it as ErrUpstream.
func (s *Service) upstream(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", logger.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

func requireNonBlank(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return payload.Invalid(field, "is required")
	}
	return nil
}

func isExtractionKind(err error) bool {
	return errors.Is(err, summary.ErrEmptyResponse) ||
		errors.Is(err, summary.ErrMalformedResponse) ||
		errors.Is(err, summary.ErrTextReply)
}
