// Package testhelper provides a throwaway PostgreSQL for integration tests.
// One container is started per test binary and shared by all tests in it.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres"
)

const (
	image      = "postgres:17-alpine"
	dbUser     = "pinyin"
	dbPassword = "pinyin"
	dbName     = "pinyin_test"
)

var shared struct {
	once sync.Once
	dsn  string
	err  error
}

// DSN starts the shared container on first use, applies migrations and
// returns its connection string.
func DSN(t *testing.T) string {
	t.Helper()

	shared.once.Do(func() {
		shared.dsn, shared.err = start()
	})
	if shared.err != nil {
		t.Fatalf("testhelper: postgres unavailable: %v", shared.err)
	}
	return shared.dsn
}

// SetupTestDB returns a pool on the shared, migrated database. The pool is
// closed when the test ends.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := DSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("testhelper: connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func start() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       dbName,
			},
			// Postgres logs readiness twice: once for the init server and
			// once for the real one.
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start %s: %w", image, err)
	}

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		return "", fmt.Errorf("resolve endpoint: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", dbUser, dbPassword, endpoint, dbName)

	if _, err := postgres.Migrate(ctx, dsn); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}
