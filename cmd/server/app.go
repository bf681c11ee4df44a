package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktrack-api/internal/config"
	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/cache"
	"github.com/phrazzld/tasktrack-api/internal/platform/memory"
	"github.com/phrazzld/tasktrack-api/internal/platform/postgres"
	"github.com/phrazzld/tasktrack-api/internal/platform/tablestore"
	"github.com/phrazzld/tasktrack-api/internal/service"
	"github.com/phrazzld/tasktrack-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Backend handles; at most one of db is set, redis only when caching.
	db    *sql.DB
	redis *redis.Client

	taskStore   store.TaskStore
	taskService service.TaskService
}

// newApplication opens the configured store, ensures its schema exists and
// builds the task service on top of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	base, err := app.openStore(ctx)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	app.taskStore = base

	if cfg.Cache.Enabled() {
		app.redis, err = cache.NewRedisClient(cfg.Cache.RedisURL)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to configure redis cache: %w", err)
		}
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		app.taskStore = cache.NewTaskCache(base, app.redis, ttl, logger)
		logger.Info("redis read cache enabled", slog.Duration("ttl", ttl))
	}

	validator, err := domain.NewValidator(cfg.Validation.DescriptionMaxLength)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	app.taskService = service.NewTaskService(app.taskStore, validator, nil, logger)
	return app, nil
}

// openStore builds the persistence backend selected by store.backend.
func (app *application) openStore(ctx context.Context) (store.TaskStore, error) {
	cfg := app.config

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = db

		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("using postgres task store")
		return postgres.NewPostgresTaskStore(db, app.logger), nil

	case config.BackendAzTables:
		client, err := tablestore.NewClientFromConnectionString(
			cfg.AzTables.ConnectionString, cfg.AzTables.TableName)
		if err != nil {
			return nil, fmt.Errorf("failed to create table client: %w", err)
		}
		if err := tablestore.EnsureTable(ctx, client); err != nil {
			return nil, fmt.Errorf("failed to ensure table %s: %w", cfg.AzTables.TableName, err)
		}
		app.logger.Info("using azure table task store", slog.String("table", cfg.AzTables.TableName))
		return tablestore.NewTableTaskStore(client, app.logger), nil

	case config.BackendMemory:
		app.logger.Warn("using in-memory task store; data is lost on restart")
		return memory.NewTaskStore(app.logger), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// cleanup releases backend connections. It is safe to call more than once.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}
}
