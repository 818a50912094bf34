package smoke

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/staffnote/pkg/logger"
)

type check struct {
	name string
	run  func(ctx context.Context, c *Client, cfg *Config) error
}

// checks run in order; event checks rely on ensureEmployee.
var checks = []check{ //nolint:gochecknoglobals // static table
	{"hello", checkHello},
	{"auth rejected without key", checkAuthRejected},
	{"ensure employee", ensureEmployee},
	{"event with required fields", checkEventRequired},
	{"event with offset timestamp", checkEventOffset},
	{"event with details", checkEventDetails},
	{"meet mapping upsert", checkMeetMapping},
}

// Run executes every check against cfg.BaseURL and fails if any check fails.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.AuthKey, cfg.Timeout)

	log.Info(ctx, "starting smoke run", logger.String("url", cfg.BaseURL), logger.String("employee_id", cfg.EmployeeID))

	var failed []string
	for _, ch := range checks {
		if err := ch.run(ctx, client, cfg); err != nil {
			stats.Failed++
			failed = append(failed, ch.name)
			log.Error(ctx, "check failed", logger.String("check", ch.name), logger.Error(err))
			continue
		}
		stats.Passed++
		log.Info(ctx, "check passed", logger.String("check", ch.name))
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "smoke run completed",
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))

	if len(failed) > 0 {
		return stats, fmt.Errorf("%w: %s", ErrCheck, strings.Join(failed, ", "))
	}
	return stats, nil
}

func checkHello(ctx context.Context, c *Client, _ *Config) error {
	resp, err := c.Hello(ctx)
	if err != nil {
		return err
	}
	if err := resp.Expect(http.StatusOK); err != nil {
		return err
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := resp.Decode(&body); err != nil {
		return err
	}
	return expectEqual("message", body.Message, "Hello World")
}

func checkAuthRejected(ctx context.Context, c *Client, _ *Config) error {
	anon := &Client{baseURL: c.baseURL, http: c.http}
	resp, err := anon.Data(ctx, map[string]string{"message": "smoke"})
	if err != nil {
		return err
	}
	return resp.Expect(http.StatusUnauthorized)
}

// ensureEmployee creates the test employee unless it exists. 409 means a
// concurrent run created it first.
func ensureEmployee(ctx context.Context, c *Client, cfg *Config) error {
	resp, err := c.GetEmployee(ctx, cfg.EmployeeID)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusOK {
		return nil
	}

	role := "Event Test Subject"
	resp, err = c.CreateEmployee(ctx, cfg.EmployeeID, EmployeeRequest{
		Name:  "Event Test Dummy " + cfg.EmployeeID,
		Email: strings.ReplaceAll(cfg.EmployeeID, "_", "-") + "@example.com",
		Role:  &role,
	})
	if err != nil {
		return err
	}
	return resp.Expect(http.StatusCreated, http.StatusConflict)
}

func createEvent(ctx context.Context, c *Client, cfg *Config, req EventRequest) (Event, error) {
	resp, err := c.CreateEvent(ctx, cfg.EmployeeID, req)
	if err != nil {
		return Event{}, err
	}
	if err := resp.Expect(http.StatusCreated); err != nil {
		return Event{}, err
	}
	var ev Event
	if err := resp.Decode(&ev); err != nil {
		return Event{}, err
	}
	if ev.EventID == "" {
		return Event{}, fmt.Errorf("%w: event_id is empty", ErrCheck)
	}
	if err := expectEqual("employee_id", ev.EmployeeID, cfg.EmployeeID); err != nil {
		return Event{}, err
	}
	if err := expectEqual("event_type", ev.EventType, req.EventType); err != nil {
		return Event{}, err
	}
	return ev, expectEqual("description", ev.Description, req.Description)
}

func checkEventRequired(ctx context.Context, c *Client, cfg *Config) error {
	ev, err := createEvent(ctx, c, cfg, EventRequest{
		EventType:   "daily work",
		Description: "Joined the weekly sync and reported task progress.",
	})
	if err != nil {
		return err
	}
	if !strings.HasSuffix(ev.Timestamp, "+00:00") {
		return fmt.Errorf("%w: timestamp %q is not UTC", ErrCheck, ev.Timestamp)
	}
	if ev.Details != nil {
		return fmt.Errorf("%w: details = %v, want null", ErrCheck, ev.Details)
	}
	return nil
}

func checkEventOffset(ctx context.Context, c *Client, cfg *Config) error {
	ev, err := createEvent(ctx, c, cfg, EventRequest{
		EventType:   "training",
		Description: "Attended an online framework course.",
		Timestamp:   "2024-01-01T10:00:00+09:00",
	})
	if err != nil {
		return err
	}
	return expectEqual("timestamp", ev.Timestamp, "2024-01-01T01:00:00+00:00")
}

func checkEventDetails(ctx context.Context, c *Client, cfg *Config) error {
	ev, err := createEvent(ctx, c, cfg, EventRequest{
		EventType:   "training",
		Description: "Finished the course.",
		Details:     map[string]any{"framework_name": "FutureFrameX", "duration_hours": 3, "completed": true},
	})
	if err != nil {
		return err
	}
	name, _ := ev.Details["framework_name"].(string)
	return expectEqual("details.framework_name", name, "FutureFrameX")
}

func checkMeetMapping(ctx context.Context, c *Client, _ *Config) error {
	email := "smoke-" + uuid.NewString() + "@example.com"
	for _, name := range []string{"Smoke First", "Smoke Second"} {
		resp, err := c.SetMeetMapping(ctx, email, name)
		if err != nil {
			return err
		}
		if err := resp.Expect(http.StatusOK); err != nil {
			return err
		}
	}

	resp, err := c.GetMeetMapping(ctx, email)
	if err != nil {
		return err
	}
	if err := resp.Expect(http.StatusOK); err != nil {
		return err
	}
	var m MeetMapping
	if err := resp.Decode(&m); err != nil {
		return err
	}
	return expectEqual("google_meet_name", m.GoogleMeetName, "Smoke Second")
}

func expectEqual(field, got, want string) error {
	if got != want {
		return fmt.Errorf("%w: %s = %q, want %q", ErrCheck, field, got, want)
	}
	return nil
}
