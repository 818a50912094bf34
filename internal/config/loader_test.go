package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/staffnote/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{ //nolint:gochecknoglobals // test fixture
	"STAFFNOTE_CONFIG",
	"STAFFNOTE_ADDR",
	"STAFFNOTE_AUTH_KEY",
	"STAFFNOTE_STORE",
	"STAFFNOTE_LOG_LEVEL",
	"STAFFNOTE_POSTGRES_DSN",
	"STAFFNOTE_POSTGRES_MAX_CONNS",
	"STAFFNOTE_POSTGRES_MIGRATE",
	"STAFFNOTE_SLACK_CHANNEL",
	"SECRET_AUTH_KEY",
	"GOOGLE_CLOUD_PROJECT",
	"GOOGLE_GEN_AI_API_KEY",
	"SLACK_TOKEN",
	"SLACK_CHANNEL",
	"PORT",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staffnote.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When no auth key is configured anywhere", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails validation", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STAFFNOTE_AUTH_KEY", "secret")
			_ = os.Setenv("STAFFNOTE_ADDR", ":9090")
			_ = os.Setenv("STAFFNOTE_LOG_LEVEL", "debug")
			_ = os.Setenv("STAFFNOTE_SLACK_CHANNEL", "C42")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AuthKey, convey.ShouldEqual, "secret")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.SlackChannel, convey.ShouldEqual, "C42")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			})
		})

		convey.Convey("When only legacy variable names are set", func() {
			_ = os.Setenv("SECRET_AUTH_KEY", "legacy-secret")
			_ = os.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
			_ = os.Setenv("GOOGLE_GEN_AI_API_KEY", "gen-key")
			_ = os.Setenv("SLACK_TOKEN", "xoxb-1")
			_ = os.Setenv("SLACK_CHANNEL", "C1")
			_ = os.Setenv("PORT", "8081")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they map onto config keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AuthKey, convey.ShouldEqual, "legacy-secret")
				convey.So(cfg.ProjectID, convey.ShouldEqual, "my-project")
				convey.So(cfg.GenAIAPIKey, convey.ShouldEqual, "gen-key")
				convey.So(cfg.SlackToken, convey.ShouldEqual, "xoxb-1")
				convey.So(cfg.SlackChannel, convey.ShouldEqual, "C1")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreDatastore)
			})
		})

		convey.Convey("When a legacy project is set with an explicit store", func() {
			_ = os.Setenv("SECRET_AUTH_KEY", "k")
			_ = os.Setenv("GOOGLE_CLOUD_PROJECT", "prod-project")
			_ = os.Setenv("STAFFNOTE_STORE", "memory")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the explicit store is kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.ProjectID, convey.ShouldEqual, "prod-project")
			})
		})

		convey.Convey("When a legacy project is set and the file picks the store", func() {
			_ = os.Setenv("SECRET_AUTH_KEY", "k")
			_ = os.Setenv("GOOGLE_CLOUD_PROJECT", "prod-project")
			_ = os.Setenv("STAFFNOTE_CONFIG", createTempConfigFile(t, "store: memory\n"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file wins over the legacy default", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			})
		})

		convey.Convey("When legacy and prefixed variables disagree", func() {
			_ = os.Setenv("SECRET_AUTH_KEY", "legacy-secret")
			_ = os.Setenv("STAFFNOTE_AUTH_KEY", "new-secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the prefixed variable wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AuthKey, convey.ShouldEqual, "new-secret")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":7070"
auth_key: "file-secret"
store: "postgres"
postgres_dsn: "postgres://staffnote@localhost/staffnote"
postgres_max_conns: 4
postgres_migrate: true
`)
			_ = os.Setenv("STAFFNOTE_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AuthKey, convey.ShouldEqual, "file-secret")
				convey.So(cfg.Store, convey.ShouldEqual, config.StorePostgres)
				convey.So(cfg.PostgresMaxConns, convey.ShouldEqual, 4)
				convey.So(cfg.PostgresMigrate, convey.ShouldBeTrue)
			})

			convey.Convey("Then env vars override the file", func() {
				_ = os.Setenv("STAFFNOTE_ADDR", ":6060")
				_ = os.Setenv("STAFFNOTE_POSTGRES_MAX_CONNS", "12")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.PostgresMaxConns, convey.ShouldEqual, 12)
				convey.So(cfg.AuthKey, convey.ShouldEqual, "file-secret")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("STAFFNOTE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store is postgres without a DSN", func() {
			_ = os.Setenv("STAFFNOTE_AUTH_KEY", "secret")
			_ = os.Setenv("STAFFNOTE_STORE", "postgres")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
