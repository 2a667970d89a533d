package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/config"
	"github.com/khrees2412/linkfolio/internal/database"
)

// App is the dependency container for the CLI application.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	pool *pgxpool.Pool
	repo *database.Repository
}

// NewApp loads configuration and builds the logger. The database is
// connected lazily because some commands (config show) run without
// one.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &App{Config: cfg, Log: log}, nil
}

// Repository connects to the database on first use, ensuring the
// schema exists, and returns the shared repository.
func (a *App) Repository(ctx context.Context) (*database.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	pool, err := database.NewPool(ctx, a.Config.Database.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	a.pool = pool
	a.repo = database.NewRepository(pool, a.Log)
	return a.repo, nil
}

// Close releases the database pool and flushes the logger.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// newLogger builds a console logger; verbose enables debug output.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
