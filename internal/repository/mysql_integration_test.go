package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/database"
	"github.com/iliyamo/kodbank/internal/model"
)

func TestMySQLIntegration(t *testing.T) {
	if os.Getenv("SKIP_DOCKER") == "1" {
		t.Skip("SKIP_DOCKER=1 set; skipping integration test")
	}
	if testing.Short() {
		t.Skip("short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=secret",
			"MYSQL_DATABASE=kodbank_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cfg := config.Config{
		DBDriver: "mysql",
		DBUser:   "root",
		DBPass:   "secret",
		DBHost:   "localhost",
		DBPort:   resource.GetPort("3306/tcp"),
		DBName:   "kodbank_test",
	}

	// migrations fail until MySQL accepts connections
	require.NoError(t, pool.Retry(func() error { return database.Migrate(cfg) }))

	db, err := database.OpenMySQL(database.MySQLDSN(cfg))
	require.NoError(t, err)
	defer db.Close()

	accounts := NewAccountRepo(db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	id, err := accounts.Create(ctx, model.Account{Username: "alice", Email: "a@x.io", PasswordHash: "digest"})
	require.NoError(t, err)

	got, err := accounts.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "100000.00", got.Balance)
	assert.Equal(t, model.RoleCustomer, got.Role)

	_, err = accounts.Create(ctx, model.Account{Username: "alice", Email: "b@x.io", PasswordHash: "digest"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	require.NoError(t, sessions.Store(ctx, id, "h1", time.Now().Add(time.Hour)))
	assert.NoError(t, sessions.Validate(ctx, "h1", id))

	require.NoError(t, accounts.DeleteByUsername(ctx, "alice"))
	assert.ErrorIs(t, sessions.Validate(ctx, "h1", id), ErrSessionNotFound)
}
