// Package dbtest provides migrated throwaway databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/database"
)

// SQLiteConfig returns a config pointing at a fresh file under t.TempDir().
func SQLiteConfig(t testing.TB) config.Config {
	t.Helper()
	return config.Config{
		DBDriver:   "sqlite",
		SQLiteFile: filepath.Join(t.TempDir(), "kodbank.db"),
	}
}

// NewSQLite opens a migrated SQLite database that is closed when t ends.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()
	cfg := SQLiteConfig(t)
	require.NoError(t, database.Migrate(cfg))

	db, err := database.OpenSQLite(cfg.SQLiteFile)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
