// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the CLI, and server bootstrap.
// Each dialect keeps its own directory; the schemas are kept equivalent.
package migrations

import (
	"embed"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for the Postgres schema.
func Postgres() fs.FS {
	return mustSub("postgres")
}

// SQLite returns the migrations for the SQLite schema.
func SQLite() fs.FS {
	return mustSub("sqlite")
}

// For returns the goose dialect and migration set for a driver name as used
// by database/sql ("pgx" or "sqlite3").
func For(driver string) (goose.Dialect, fs.FS, bool) {
	switch driver {
	case "pgx", "postgres":
		return goose.DialectPostgres, Postgres(), true
	case "sqlite3", "sqlite":
		return goose.DialectSQLite3, SQLite(), true
	}
	return "", nil, false
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		// Only reachable if the embed pattern above changes.
		panic("migrations: " + err.Error())
	}
	return sub
}
