// Package cli implements the tabinavi commands. Every command loads its
// configuration through config.Load and opens the store it names.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/config"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/itinerary"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo/sqlite"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
	"github.com/OOP-2025-final-G02/Tabi-Navi/migrations"
)

// openGateway opens the store named by cfg.DatabaseURL. With migrate set,
// pending migrations are applied before the gateway is returned.
func openGateway(ctx context.Context, cfg config.Config, migrate bool) (repo.Gateway, error) {
	driver, dsn, err := cfg.Store()
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		// SQLite migrates on the gateway's own handle; a second handle
		// would see a different database for ":memory:".
		if migrate {
			if err := migrateUp(ctx, db, driver); err != nil {
				db.Close()
				return nil, err
			}
		}
		return sqlite.New(db), nil
	}

	if migrate {
		db, err := openSQLDB(driver, dsn)
		if err != nil {
			return nil, err
		}
		err = migrateUp(ctx, db, driver)
		db.Close()
		if err != nil {
			return nil, err
		}
	}

	// pgxpool.New does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cli: create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cli: connect to database: %w", err)
	}
	return repo.NewGateway(pool), nil
}

// openSQLDB opens a database/sql handle for goose.
func openSQLDB(driver, dsn string) (*sql.DB, error) {
	if driver == config.DriverSQLite {
		return sqlite.Open(dsn)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("cli: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cli: ping %s: %w", driver, err)
	}
	return db, nil
}

// newProvider builds a goose provider over the migration set for driver.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	dialect, fsys, ok := migrations.For(driver)
	if !ok {
		return nil, fmt.Errorf("cli: no migrations for driver %q", driver)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("cli: create goose provider: %w", err)
	}
	return provider, nil
}

func migrateUp(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("cli: apply migrations: %w", err)
	}
	for _, r := range results {
		slog.InfoContext(ctx, "migration applied", "version", r.Source.Version, "path", r.Source.Path)
	}
	return nil
}

// newPlanService assembles the engine and plan service over store.
func newPlanService(cfg config.Config, store repo.Gateway, logger *slog.Logger) (*service.PlanService, error) {
	seq, err := itinerary.NewSnowflakeSequencer(cfg.NodeID)
	if err != nil {
		return nil, err
	}
	engine := itinerary.NewEngine(seq)
	return service.NewPlanService(store, engine,
		service.WithHistoryLimit(cfg.HistoryLimit),
		service.WithLogger(logger),
	), nil
}

// newLogger returns a JSON logger at the named level; unknown levels mean info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
