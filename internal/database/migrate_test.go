package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kodbank/internal/database"
	"github.com/iliyamo/kodbank/internal/database/dbtest"
)

func tableExists(t *testing.T, path, name string) bool {
	t.Helper()
	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	err = db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrator_UpDownVersion(t *testing.T) {
	cfg := dbtest.SQLiteConfig(t)

	mg, err := database.NewMigrator(cfg)
	require.NoError(t, err)
	defer mg.Close()

	v, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, mg.Up())
	v, _, err = mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, tableExists(t, cfg.SQLiteFile, "accounts"))
	assert.True(t, tableExists(t, cfg.SQLiteFile, "session_tokens"))

	// second run is a no-op
	require.NoError(t, mg.Up())

	require.NoError(t, mg.Steps(-1))
	assert.False(t, tableExists(t, cfg.SQLiteFile, "session_tokens"))
	assert.True(t, tableExists(t, cfg.SQLiteFile, "accounts"))

	require.NoError(t, mg.Down())
	assert.False(t, tableExists(t, cfg.SQLiteFile, "accounts"))
}

func TestSchema_DefaultsAndCascade(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO accounts (username, email, password_hash) VALUES ('bob','b@x.io','h')")
	require.NoError(t, err)

	var balance, role string
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT balance, role FROM accounts WHERE username='bob'").Scan(&balance, &role))
	assert.Equal(t, "100000.00", balance)
	assert.Equal(t, "customer", role)

	_, err = db.ExecContext(ctx,
		"INSERT INTO session_tokens (account_id, token_hash, expires_at) SELECT id, 'abc', '2099-01-01 00:00:00' FROM accounts WHERE username='bob'")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "DELETE FROM accounts WHERE username='bob'")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_tokens").Scan(&n))
	assert.Zero(t, n)

	_, err = db.ExecContext(ctx,
		"INSERT INTO accounts (username, email, password_hash, role) VALUES ('eve','e@x.io','h','root')")
	assert.Error(t, err, "role is constrained to the enumerated values")
}
