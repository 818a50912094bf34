// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) returns a Config holding defaults; Load layers file and env on top.
// - Secrets (auth key, API keys, tokens) are never logged.
package config

import (
	"context"
)

// Store backends understood by cmd/main.
const (
	StoreMemory    = "memory"
	StoreDatastore = "datastore"
	StorePostgres  = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AuthKey is the shared secret expected in the X-Auth-Key header.
	AuthKey string `koanf:"auth_key"`

	// Store selects the document store backend: memory, datastore or postgres.
	Store string `koanf:"store"`

	// ProjectID is the Google Cloud project for the datastore backend.
	// Empty means detect from the environment.
	ProjectID string `koanf:"project_id"`

	PostgresDSN      string `koanf:"postgres_dsn"`
	PostgresMaxConns int32  `koanf:"postgres_max_conns"`
	// PostgresMigrate applies embedded migrations at startup.
	PostgresMigrate bool `koanf:"postgres_migrate"`

	// GenAIAPIKey enables the meeting summary extractor. Empty disables it.
	GenAIAPIKey string `koanf:"genai_api_key"`
	GenAIModel  string `koanf:"genai_model"`

	// SlackToken and SlackChannel enable summary delivery. Either empty skips posting.
	SlackToken   string `koanf:"slack_token"`
	SlackChannel string `koanf:"slack_channel"`
	// SlackAPIURL overrides the Slack Web API base URL (tests, proxies).
	SlackAPIURL string `koanf:"slack_api_url"`

	// OTelEndpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	OTelEndpoint string `koanf:"otel_endpoint"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		Store:            StoreMemory,
		PostgresMaxConns: 10,
		GenAIModel:       "gemini-2.0-flash",
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.AuthKey == "":
		return invalid("auth_key must not be empty")
	}
	switch c.Store {
	case StoreMemory, StoreDatastore:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres store")
		}
		if c.PostgresMaxConns <= 0 {
			return invalid("postgres_max_conns must be positive")
		}
	default:
		return invalid("unknown store " + c.Store)
	}
	return nil
}

// SlackEnabled reports whether summaries should be posted.
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackChannel != ""
}
