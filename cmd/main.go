package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/staffnote/internal/adapters/gemini"
	"github.com/okian/staffnote/internal/adapters/http/api"
	"github.com/okian/staffnote/internal/adapters/http/swagger"
	"github.com/okian/staffnote/internal/adapters/notify"
	"github.com/okian/staffnote/internal/adapters/repository"
	"github.com/okian/staffnote/internal/adapters/repository/datastore"
	"github.com/okian/staffnote/internal/adapters/repository/postgres"
	app "github.com/okian/staffnote/internal/app"
	"github.com/okian/staffnote/internal/config"
	"github.com/okian/staffnote/pkg/logger"
	"github.com/okian/staffnote/pkg/metrics"
	"github.com/okian/staffnote/pkg/tracing"
)

// HTTP server timeout constants. Summaries wait on the model, so writes get
// more room than reads.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 120 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	serviceName           = "staffnote"
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "staffnote exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn(ctx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	store, err := openStore(ctx, cfg, log.Named("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "store close failed", logger.Error(err))
		}
	}()

	opts, err := serviceOptions(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	svc := app.New(opts...)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, cfg.AuthKey, api.WithLogger(log.Named("http"))).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	return g.Wait()
}

// openStore builds the configured document store.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreDatastore:
		s, err := datastore.Open(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using datastore store", logger.String("project_id", cfg.ProjectID))
		return s, nil

	case config.StorePostgres:
		if cfg.PostgresMigrate {
			status, err := postgres.Migrate(postgres.ActionUp, cfg.PostgresDSN)
			if err != nil {
				return nil, err
			}
			log.Info(ctx, "postgres migrations applied",
				logger.Any("version", status.Version),
				logger.Bool("changed", status.Applied))
		}
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using postgres store")
		return postgres.New(pool, pool.Close), nil

	default:
		log.Warn(ctx, "using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
}

// serviceOptions wires the store and whichever of the model and Slack
// clients are configured.
func serviceOptions(ctx context.Context, cfg *config.Config, store repository.Store, log logger.Logger) ([]app.Option, error) {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
	}

	if cfg.GenAIAPIKey != "" {
		extractor, err := gemini.New(ctx, cfg.GenAIAPIKey, nil, gemini.WithModel(cfg.GenAIModel))
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithExtractor(extractor))
	} else {
		log.Warn(ctx, "genai_api_key not set; meeting summaries are disabled")
	}

	if cfg.SlackEnabled() {
		var slackOpts []notify.Option
		if cfg.SlackAPIURL != "" {
			slackOpts = append(slackOpts, notify.WithAPIURL(cfg.SlackAPIURL))
		}
		opts = append(opts, app.WithNotifier(notify.NewSlack(cfg.SlackToken, cfg.SlackChannel, slackOpts...)))
	} else {
		log.Warn(ctx, "slack_token or slack_channel not set; summaries will not be posted")
	}

	return opts, nil
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
