// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"vidly/database"

	"github.com/jmoiron/sqlx"
)

// MigrationsDir is the absolute path of database/migrations
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "migrations")
}

// New returns a migrated database in t's temp dir, closed on cleanup
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	conn, err := database.Open("sqlite3", filepath.Join(t.TempDir(), "vidly.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := database.Migrate(conn, MigrationsDir()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
