// Package app assembles the service from its configuration and runs the
// HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/internal/config"
	"github.com/quillpost/quillpost/internal/httpapi"
	"github.com/quillpost/quillpost/internal/store/postgres"
	promexport "github.com/quillpost/quillpost/metrics/export/prometheus"
	"github.com/quillpost/quillpost/middleware"
)

// Repositories is the persistence the HTTP layer needs. The Postgres
// repositories satisfy both interfaces.
type Repositories struct {
	Users interface {
		quillpost.UserProvider
		httpapi.Users
	}
	Messages httpapi.Messages
	// Ping reports database readiness.
	Ping httpapi.Check
}

// App is a wired service. Build it with New or Assemble, then call Run.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *quillpost.Engine
	server  *http.Server
	closers []func()
}

// New connects to Postgres and, for the redis backend, Redis, then
// assembles the service. Both connections are retried with backoff.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := postgres.Open(ctx, postgres.PoolConfig{
		DSN:            cfg.Database.DSN(),
		MinConns:       cfg.Database.MinConns,
		MaxConns:       cfg.Database.MaxConns,
		AcquireTimeout: cfg.Database.AcquireTimeout,
		ConnectRetries: cfg.Database.ConnectRetries,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("connected to postgres", "max_conns", cfg.Database.MaxConns)

	repos := Repositories{
		Users:    postgres.NewUserRepository(pool),
		Messages: postgres.NewMessageRepository(pool),
		Ping:     pool.Ping,
	}

	var rdb redis.UniversalClient
	if strings.EqualFold(cfg.Auth.Session.Backend, quillpost.BackendRedis) {
		rdb, err = connectRedis(ctx, cfg.Redis, cfg.Database.ConnectRetries)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr())
	}

	a, err := Assemble(cfg, logger, repos, rdb)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		pool.Close()
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}
	a.closers = append(a.closers, pool.Close)
	return a, nil
}

// Assemble builds the engine, metrics and HTTP server on top of already
// connected repositories. rdb may be nil when the memory backend is
// configured.
func Assemble(cfg config.Config, logger *slog.Logger, repos Repositories, rdb redis.UniversalClient) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	b := quillpost.New().
		WithConfig(cfg.Auth).
		WithUserProvider(repos.Users).
		WithLogger(logger)
	if rdb != nil {
		b = b.WithRedis(rdb)
	}
	engine, err := b.Build()
	if err != nil {
		return nil, oops.Code("ENGINE_BUILD_FAILED").Wrap(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics, err := promexport.NewCollector(engine)
	if err != nil {
		engine.Close()
		return nil, oops.Code("METRICS_INIT_FAILED").Wrap(err)
	}
	if err := reg.Register(engineMetrics); err != nil {
		engine.Close()
		return nil, oops.Code("METRICS_INIT_FAILED").Wrap(err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(reg)
	if err != nil {
		engine.Close()
		return nil, oops.Code("METRICS_INIT_FAILED").Wrap(err)
	}

	ready := map[string]httpapi.Check{"sessions": engine.Ping}
	if repos.Ping != nil {
		ready["postgres"] = repos.Ping
	}

	api := httpapi.New(httpapi.Deps{
		Accounts:    engine,
		Auth:        engine,
		Users:       repos.Users,
		Messages:    repos.Messages,
		Ready:       ready,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HTTPMetrics: httpMetrics,
		Logger:      logger,
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           api.Handler(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		},
		closers: []func(){engine.Close},
	}, nil
}

func (a *App) Engine() *quillpost.Engine {
	return a.engine
}

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.Close()
		return oops.Code("LISTEN_FAILED").With("addr", a.server.Addr).Wrap(err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then drains in-flight
// requests within the shutdown timeout and releases every resource.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- a.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("SERVE_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return oops.Code("SERVE_FAILED").Wrap(err)
	}
	return nil
}

// Close releases resources in reverse acquisition order. It is called by
// Serve; call it directly only when Serve never runs.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, retries uint64) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr(),
		Password:              cfg.Password,
		DB:                    cfg.DB,
		DialTimeout:           cfg.DialTimeout,
		ContextTimeoutEnabled: true,
	})

	backoff := retry.WithMaxRetries(retries, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_UNREACHABLE").With("addr", cfg.Addr()).Wrap(err)
	}
	return client, nil
}
