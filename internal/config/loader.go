package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// legacyEnv maps the variable names used by earlier deployments to config keys.
var legacyEnv = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"SECRET_AUTH_KEY":       "auth_key",
	"GOOGLE_CLOUD_PROJECT":  "project_id",
	"GOOGLE_GEN_AI_API_KEY": "genai_api_key",
	"SLACK_TOKEN":           "slack_token",
	"SLACK_CHANNEL":         "slack_channel",
	"PORT":                  "addr",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if STAFFNOTE_CONFIG is set
//  3. legacy env names (SECRET_AUTH_KEY, PORT, ...)
//  4. env (prefix STAFFNOTE_)
//
// A legacy GOOGLE_CLOUD_PROJECT with no explicit store selects datastore,
// the backend those deployments ran on.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("STAFFNOTE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(path, err)
		}
	}

	// Empty key from the callback tells koanf to skip the variable.
	legacyProject := false
	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		target, ok := legacyEnv[key]
		if !ok || value == "" {
			return "", nil
		}
		switch key {
		case "PORT":
			return target, ":" + value
		case "GOOGLE_CLOUD_PROJECT":
			legacyProject = true
		}
		return target, value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, loadFailed("legacy env", err)
	}

	// STAFFNOTE_AUTH_KEY -> auth_key. Underscores are kept to match the flat koanf tags.
	envProvider := env.Provider("STAFFNOTE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "staffnote_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed("env", err)
	}

	if legacyProject && !k.Exists("store") {
		if err := k.Set("store", StoreDatastore); err != nil {
			return nil, loadFailed("legacy env", err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed("unmarshal", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
