//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAnnopredictWithMySQL tests the CLI with MySQL graph cache and run store.
func TestAnnopredictWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "annopredict",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/annopredict?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestAnnopredictWithPostgres tests the CLI with PostgreSQL graph cache and run store.
func TestAnnopredictWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario clears both stores, runs the pipeline twice and checks
// that the cache and the run history picked it up.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	ws := newWorkspace(t)
	env := []string{
		"ANNOPREDICT_CACHE_BACKEND=" + backend,
		"ANNOPREDICT_CACHE_DB_CONNECT=" + connStr,
		"ANNOPREDICT_RUNS_BACKEND=" + backend,
		"ANNOPREDICT_RUNS_DB_CONNECT=" + connStr,
	}

	_, err := ws.run(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = ws.run(t, env, "runs", "clear")
	require.NoError(t, err)
	_, err = ws.run(t, env, "runs", "migrate")
	require.NoError(t, err)

	args := append([]string{"run"}, ws.inputArgs()...)
	args = append(args, ws.pathArgs()...)
	args = append(args, "--sample-size", "3", "--algorithms", "overlapping_neighbors,protein_degree,random")
	for range 2 {
		_, err = ws.run(t, env, args...)
		require.NoError(t, err)
	}

	stdout, err := ws.run(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Entries: 1")

	stdout, err = ws.run(t, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Runs: 2")
	assert.Contains(t, stdout, "Total Algorithm Runs: 6")

	_, err = ws.run(t, env, "runs", "export", "--output-file", ws.dir+"/export")
	require.NoError(t, err)
	assert.FileExists(t, ws.dir+"/export.runs.parquet")
}
