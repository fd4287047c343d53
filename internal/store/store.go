// Package store opens the configured certificate storage engine.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/certvault/internal/config"
	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/JonMunkholm/certvault/internal/store/postgres"
	"github.com/JonMunkholm/certvault/internal/store/sqlite"
)

// Backend is a core.Store with lifecycle operations.
type Backend interface {
	core.Store
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*postgres.Store)(nil)
)

// Open connects to the engine selected by cfg.Driver. When cfg.AutoMigrate
// is set the schema is created before returning.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	var (
		backend Backend
		err     error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		backend, err = sqlite.New(cfg.DataDir, logger)
	case config.DriverPostgres:
		backend, err = postgres.New(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := backend.Migrate(ctx); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}

	logger.Info("storage ready", "driver", cfg.Driver, "auto_migrate", cfg.AutoMigrate)
	return backend, nil
}
