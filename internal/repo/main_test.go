package repo_test

import (
	"os"
	"testing"

	"github.com/OOP-2025-final-G02/Tabi-Navi/testutil"
)

// TestMain applies all pending migrations to the test database once, before
// any test in the package runs, so individual tests never think about schema
// state.
func TestMain(m *testing.M) {
	// Without a test DB the integration tests skip themselves.
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		testutil.MustMigratePostgres(dsn)
	}
	os.Exit(m.Run())
}
