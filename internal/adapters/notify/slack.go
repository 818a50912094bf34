// Package notify posts meeting summaries to a Slack channel.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/okian/staffnote/pkg/metrics"
)

// Slack posts plain text messages to one channel with chat.postMessage.
type Slack struct {
	client  *slack.Client
	channel string
}

// Option configures the Slack notifier.
type Option func(*options)

type options struct {
	apiURL     string
	httpClient *http.Client
}

// WithAPIURL points the client at another Web API base URL, e.g. a test server.
func WithAPIURL(u string) Option {
	return func(o *options) {
		if u != "" {
			if !strings.HasSuffix(u, "/") {
				u += "/"
			}
			o.apiURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// NewSlack builds a notifier authenticated with a bot token.
func NewSlack(token, channel string, opts ...Option) *Slack {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []slack.Option{}
	if o.apiURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(o.apiURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, slack.OptionHTTPClient(o.httpClient))
	}

	return &Slack{client: slack.New(token, clientOpts...), channel: channel}
}

// Post sends text to the configured channel with link unfurling disabled.
func (s *Slack) Post(ctx context.Context, text string) error {
	start := time.Now()
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordUpstreamCall("slack", "error", latency)
		return fmt.Errorf("slack: post message to %s: %w", s.channel, err)
	}
	metrics.RecordUpstreamCall("slack", "ok", latency)
	return nil
}

// Channel returns the destination channel.
func (s *Slack) Channel() string { return s.channel }
