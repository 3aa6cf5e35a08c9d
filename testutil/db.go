// Package testutil provides shared helpers for database tests.
// Postgres helpers skip automatically when TEST_DATABASE_URL is not set, so
// unit tests run without a database server. SQLite helpers always run.
package testutil

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo/sqlite"
	"github.com/OOP-2025-final-G02/Tabi-Navi/migrations"
)

// NewTx opens a transaction on the TEST_DATABASE_URL database and rolls it
// back when the test finishes, so every test starts from the migrated but
// empty schema. Repos and the gateway accept a pgx.Tx in place of a pool.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewTx: open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a *sql.DB on the TEST_DATABASE_URL database through the
// pgx database/sql driver, for code that drives goose directly.
// The connection is closed automatically when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openPostgres(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MustMigratePostgres applies every pending Postgres migration to dsn and
// panics on any error. Use it in TestMain, where no *testing.T is available.
func MustMigratePostgres(dsn string) {
	db, err := openPostgres(dsn)
	if err != nil {
		panic("testutil.MustMigratePostgres: " + err.Error())
	}
	defer db.Close()

	if err := up(db, goose.DialectPostgres, migrations.Postgres()); err != nil {
		panic("testutil.MustMigratePostgres: " + err.Error())
	}
}

// NewSQLite returns a migrated in-memory SQLite database. Every call gets its
// own database, so there is nothing to clean up between tests.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := up(db, goose.DialectSQLite3, migrations.SQLite()); err != nil {
		t.Fatalf("testutil.NewSQLite: %v", err)
	}
	return db
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func up(db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}

// requireDSN returns the TEST_DATABASE_URL environment variable value,
// skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
