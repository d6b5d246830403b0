package dbbuilder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"NYCU-SDC/form-engine-backend/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type DBTX = database.DBTX

const (
	postgresImage = "postgres"
	postgresTag   = "16-alpine"
	postgresUser  = "form"
	postgresPass  = "form"
	postgresDB    = "form_engine_test"
)

// SetupPostgres starts a disposable PostgreSQL container, applies every
// migration and returns a pool connected to it. The test is skipped in short
// mode or when no Docker daemon is reachable.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}
	pool.MaxWait = 60 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPass,
			"POSTGRES_DB=" + postgresDB,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge postgres container: %v", err)
		}
	})

	databaseURL := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		postgresUser, postgresPass, resource.GetHostPort("5432/tcp"), postgresDB)

	var dbPool *pgxpool.Pool
	err = pool.Retry(func() error {
		candidate, err := pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		if err := candidate.Ping(context.Background()); err != nil {
			candidate.Close()
			return err
		}
		dbPool = candidate
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(dbPool.Close)

	require.NoError(t, database.MigrateUp(databaseURL, zap.NewNop()))

	return dbPool
}
