// Package databasetest provides a migrated PostgreSQL database for integration tests.
//
// TEST_DATABASE_URL is used when set. Otherwise a disposable postgres container is
// started through Docker once per test binary. Tests are skipped when neither is
// available.
package databasetest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/workflows-scrum/workflows/internal/database"
)

const (
	containerUser     = "postgres"
	containerPassword = "postgres"
	containerDB       = "workflow_test"
	// containerTTL bounds how long an abandoned container survives, in seconds.
	containerTTL = 600

	advisoryLockKey = 727274
)

var (
	setupOnce sync.Once
	setupURL  string
	setupErr  error
)

// truncateAll empties every application table and resets identities.
const truncateAll = `
	TRUNCATE TABLE comments, evaluations, tasks, sprints, team_members, teams, projects, users
	RESTART IDENTITY CASCADE`

// URL returns a connection string for a migrated test database, skipping t when
// no database can be reached.
func URL(t *testing.T) string {
	t.Helper()

	setupOnce.Do(func() {
		setupURL, setupErr = resolve()
	})
	if setupErr != nil {
		t.Skipf("skipping: no test database available: %v", setupErr)
	}
	return setupURL
}

// Open returns a pool on an empty, migrated database. The pool is closed when
// the test finishes.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := URL(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Skipf("skipping: cannot connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping: cannot ping test database: %v", err)
	}

	// Test binaries sharing TEST_DATABASE_URL run one test at a time.
	lockConn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		t.Fatalf("acquiring lock connection: %v", err)
	}
	if _, err := lockConn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockKey); err != nil {
		lockConn.Release()
		pool.Close()
		t.Fatalf("locking test database: %v", err)
	}
	t.Cleanup(func() {
		_, _ = lockConn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey)
		lockConn.Release()
		pool.Close()
	})

	if _, err := pool.Exec(ctx, truncateAll); err != nil {
		t.Fatalf("truncating test database: %v", err)
	}

	return pool
}

func resolve() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		var err error
		dbURL, err = startContainer()
		if err != nil {
			return "", err
		}
	}

	if err := database.Migrate(ctx, dbURL); err != nil {
		return "", fmt.Errorf("migrating test database: %w", err)
	}
	return dbURL, nil
}

func startContainer() (string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", fmt.Errorf("connecting to docker: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return "", fmt.Errorf("pinging docker: %w", err)
	}
	pool.MaxWait = 90 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=" + containerUser,
			"POSTGRES_PASSWORD=" + containerPassword,
			"POSTGRES_DB=" + containerDB,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("starting postgres container: %w", err)
	}
	if err := resource.Expire(containerTTL); err != nil {
		_ = pool.Purge(resource)
		return "", fmt.Errorf("setting container expiry: %w", err)
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		containerUser, containerPassword, resource.GetHostPort("5432/tcp"), containerDB)

	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := database.New(ctx, dbURL)
		if err != nil {
			return err
		}
		db.Close()
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		return "", fmt.Errorf("waiting for postgres container: %w", err)
	}

	return dbURL, nil
}
