package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aanand-mishra/student-lookup/internal/config"
	"github.com/aanand-mishra/student-lookup/internal/lookup"
	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/store/pocketbase"
	"github.com/aanand-mishra/student-lookup/internal/store/postgres"
	"github.com/aanand-mishra/student-lookup/internal/store/sqlite"
)

// backend is an opened record store. SQL stores also write, PocketBase
// writes when its token allows it.
type backend interface {
	store.Store
	store.Writer
}

// app is everything a subcommand needs, constructed once at startup and
// held for the process lifetime.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	backend backend
	ctrl    *lookup.Controller
	close   func() error
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	log := setupLogger(cfg.Env, logOut)
	slog.SetDefault(log)

	b, closeFn, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("record store ready", slog.String("backend", cfg.Store.Backend))

	ctrl := lookup.New(b, lookup.Config{
		Timeout: cfg.Lookup.Timeout,
		Logger:  log,
	})

	return &app{cfg: cfg, log: log, backend: b, ctrl: ctrl, close: closeFn}, nil
}

// openBackend opens the store named by cfg.Store.Backend.
func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (backend, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendPocketBase:
		clientCfg := pocketbase.DefaultClientConfig(cfg.PocketBase.URL)
		clientCfg.Token = cfg.PocketBase.Token
		if cfg.PocketBase.Timeout > 0 {
			clientCfg.Timeout = cfg.PocketBase.Timeout
		}
		clientCfg.Logger = log
		return pocketbase.NewClient(clientCfg), func() error { return nil }, nil

	case config.BackendSQLite:
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	case config.BackendPostgres:
		db, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
