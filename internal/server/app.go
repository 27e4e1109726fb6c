// Package server assembles the taskkeeper server: it picks the logging
// backend and the storage, connects the cache, wires the services behind the
// HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/policy"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpapi.Server
	closers []io.Closer
}

// NewLogger builds the logger selected by cfg.LogBackend.
func NewLogger(cfg *config.Config) (logging.Logger, error) {
	switch cfg.LogBackend {
	case "zap":
		return logging.NewProductionZapLogger(cfg.LogLevel)
	default:
		return logging.NewJSONSlogLogger(os.Stdout, cfg.LogLevel), nil
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := NewLogger(c)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger}

	runner, repos, err := app.initStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	client, err := app.initRedis(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(c.SecretKey), c.Algorithm)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	m := metrics.New()
	hasher := cryptox.NewHasher(cryptox.DefaultParams(), c.HashConcurrency)
	engine := policy.NewEngine()

	var (
		store   cache.Store         = cache.NopStore{}
		limiter httpapi.RateLimiter = httpapi.NopLimiter{}
	)
	if client != nil {
		store = cache.NewRedisStore(client)
		limiter = httpapi.NewRedisLimiter(client, "login", c.LoginRateLimit, c.LoginRateWindow)
	}
	reader := cache.NewReader(store, c.CacheTTL, logger.With("module", "cache"), m)

	router, err := httpapi.NewRouter(httpapi.Options{
		Sessions:       services.NewSessionManager(runner, repos, hasher, codec, c, logger.With("module", "sessions"), m),
		Users:          services.NewUserService(runner, repos, hasher, engine, reader, logger.With("module", "users")),
		Projects:       services.NewProjectService(runner, repos, engine, reader, logger.With("module", "projects")),
		Tasks:          services.NewTaskService(runner, repos, engine, reader, logger.With("module", "tasks")),
		LoginLimiter:   limiter,
		TrustedProxies: c.TrustedProxies,
		Metrics:        m,
		Logger:         logger,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("router init error: %w", err)
	}

	app.server = httpapi.NewServer(c.HTTPAddr, logger, router)
	return app, nil
}

// initStorage opens PostgreSQL and applies migrations, or falls back to the
// in-memory repositories for config.MemoryDSN.
func (app *App) initStorage(ctx context.Context) (dbx.TxRunner, repomanager.RepositoryManager, error) {
	if app.config.UseMemoryStorage() {
		app.logger.Warn(ctx, "using in-memory storage; data is lost on exit")
		return dbx.DirectRunner{}, repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db)

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return dbx.NewSQLRunner(db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}), repos, nil
}

// initRedis connects to RedisURL. An empty URL disables caching and login
// rate limiting.
func (app *App) initRedis(ctx context.Context) (*redis.Client, error) {
	if app.config.RedisURL == "" {
		app.logger.Warn(ctx, "no redis configured; cache and login rate limit disabled")
		return nil, nil
	}

	client, err := cache.Connect(ctx, app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client)
	return client, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	gin.SetMode(gin.ReleaseMode)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	app.Close()

	app.logger.Info(ctx, "App stopped")
	return err
}

// Close releases the database and Redis connections.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
