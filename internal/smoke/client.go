// Package smoke exercises a running staffnote server end to end.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is a raw HTTP result.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the body into v.
func (r Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrCheck, err)
	}
	return nil
}

// Expect fails unless the status is one of want.
func (r Response) Expect(want ...int) error {
	for _, w := range want {
		if r.Status == w {
			return nil
		}
	}
	return fmt.Errorf("%w: got %d, want %v: %s", ErrUnexpectedStatus, r.Status, want, strings.TrimSpace(string(r.Body)))
}

// Client calls the staffnote HTTP API.
type Client struct {
	baseURL string
	authKey string
	http    *http.Client
}

// NewClient creates a client. An empty authKey sends no X-Auth-Key header.
func NewClient(baseURL, authKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authKey: authKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Do sends body as JSON when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("%w: marshal body: %w", ErrRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authKey != "" {
		req.Header.Set("X-Auth-Key", c.authKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	return Response{Status: resp.StatusCode, Body: data}, nil
}

// Hello calls GET /.
func (c *Client) Hello(ctx context.Context) (Response, error) {
	return c.Do(ctx, http.MethodGet, "/", nil)
}

// Data calls POST /data with body.
func (c *Client) Data(ctx context.Context, body any) (Response, error) {
	return c.Do(ctx, http.MethodPost, "/data", body)
}

// CreateEmployee calls POST /employees/{id}.
func (c *Client) CreateEmployee(ctx context.Context, id string, req EmployeeRequest) (Response, error) {
	return c.Do(ctx, http.MethodPost, "/employees/"+url.PathEscape(id), req)
}

// GetEmployee calls GET /employees/{id}.
func (c *Client) GetEmployee(ctx context.Context, id string) (Response, error) {
	return c.Do(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil)
}

// CreateEvent calls POST /employees/{id}/events.
func (c *Client) CreateEvent(ctx context.Context, employeeID string, req EventRequest) (Response, error) {
	return c.Do(ctx, http.MethodPost, "/employees/"+url.PathEscape(employeeID)+"/events", req)
}

// SetMeetMapping calls POST /google_meet_employee_map/{email}.
func (c *Client) SetMeetMapping(ctx context.Context, email, name string) (Response, error) {
	return c.Do(ctx, http.MethodPost, "/google_meet_employee_map/"+email, MeetMapping{GoogleMeetName: name})
}

// GetMeetMapping calls GET /google_meet_employee_map/{email}.
func (c *Client) GetMeetMapping(ctx context.Context, email string) (Response, error) {
	return c.Do(ctx, http.MethodGet, "/google_meet_employee_map/"+email, nil)
}

// Summarize calls POST /meeting-summary/meeting.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (Response, error) {
	return c.Do(ctx, http.MethodPost, "/meeting-summary/meeting", req)
}
