package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/catalog"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/config"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain/srs"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/localcache"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/logger"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/platform/postgres"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/service/sync"
	"github.com/osmnmelih/deutsch-delight-sub001/internal/task"
)

// application bundles the wired dependencies of the server process.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	pool    *pgxpool.Pool
	cache   *localcache.Cache
	writer  *task.Writer
	manager *sync.Manager
}

// newApplication loads configuration and builds every component: logging,
// the remote store (with migrations applied), the local cache, the catalog,
// the write-behind queue, and the session manager.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("cache_in_memory", cfg.Cache.InMemory))

	if err := runMigrations(cfg.Database.URL, appLogger); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	cacheConfig := localcache.DefaultConfig(cfg.Cache.Path)
	if cfg.Cache.InMemory {
		cacheConfig = localcache.InMemoryConfig()
	}
	cacheConfig.Logger = appLogger
	cache, err := localcache.Open(cacheConfig)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("opening local cache: %w", err)
	}

	items, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		pool.Close()
		_ = cache.Close()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	appLogger.Info("catalog loaded", slog.Int("items", len(items)))

	scheduler := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		AgainReviewMinutes:  cfg.Scheduler.AgainReviewMinutes,
		FirstInterval:       cfg.Scheduler.FirstInterval,
		SecondInterval:      cfg.Scheduler.SecondInterval,
		MasteredRepetitions: cfg.Scheduler.MasteredRepetitions,
	}))

	writer := task.NewWriter(task.WriterConfig{
		QueueSize:    cfg.Writer.QueueSize,
		WorkerCount:  cfg.Writer.WorkerCount,
		WriteTimeout: cfg.Writer.WriteTimeout,
	}, appLogger)

	manager, err := sync.NewManager(sync.ManagerConfig{
		Catalog: items,
		Local:   cache,
		Remote:  postgres.NewRecordStore(pool, appLogger),
		SRS:     scheduler,
		Writer:  writer,
		Logger:  appLogger,
	})
	if err != nil {
		pool.Close()
		_ = cache.Close()
		return nil, fmt.Errorf("creating session manager: %w", err)
	}

	return &application{
		config:  cfg,
		logger:  appLogger,
		pool:    pool,
		cache:   cache,
		writer:  writer,
		manager: manager,
	}, nil
}

// shutdown flushes the write queue and releases every resource. The write
// queue goes first so pending record writes still have a live pool and cache.
func (app *application) shutdown(ctx context.Context) {
	if err := app.writer.Close(ctx); err != nil {
		app.logger.Warn("write queue did not drain cleanly", "error", err)
	}
	app.pool.Close()
	if err := app.cache.Close(); err != nil {
		app.logger.Warn("failed to close local cache", "error", err)
	}
	app.logger.Info("shutdown complete")
}
