package app

import (
	"context"
	"fmt"
	"log/slog"

	"timekeeper/internal/adapter/bolt"
	"timekeeper/internal/adapter/mysql"
	"timekeeper/internal/adapter/system"
	"timekeeper/internal/config"
	"timekeeper/internal/migrate"
	"timekeeper/internal/ports"
	"timekeeper/internal/repository"
	"timekeeper/internal/session"
	"timekeeper/internal/usecase"
)

// App wires the store adapter, repository, session register and engine.
type App struct {
	log    *slog.Logger
	store  ports.Store
	repo   *repository.Repository
	engine *usecase.Engine
}

// New builds the application from configuration.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	var (
		store ports.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		// Apply schema before opening the store for use.
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		store, err = mysql.NewStore(ctx, cfg.MySQL.DSN, log)
	case config.DriverBolt:
		store, err = bolt.Open(cfg.Bolt.Path, log)
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewWithStore(log, store), nil
}

// NewWithStore builds the application around an already-open store.
// Used by tests to run on the in-memory adapter.
func NewWithStore(log *slog.Logger, store ports.Store) *App {
	clock := system.Clock{}
	ids := system.UUIDSource{}
	repo := repository.New(store, clock, ids, log)
	register := session.NewRegister(repo, repo, clock, log)
	engine := usecase.NewEngine(repo, register, clock, log)

	return &App{log: log, store: store, repo: repo, engine: engine}
}

// Close releases the underlying store.
func (a *App) Close() error { return a.store.Close() }
