//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenfelt/cardroom/internal/repository/postgres"
)

const (
	TestDBHost = "localhost"
	TestDBPort = 5435
	TestDBUser = "cardroom"
	TestDBPass = "cardroom"
	TestDBName = "cardroom_test"
)

// TestEnv holds the shared database resources for an integration test.
type TestEnv struct {
	Pool  *pgxpool.Pool
	Store *postgres.Store
	t     *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBUser)
}

func ensureTestDB() error {
	if os.Getenv("TEST_DATABASE_URL") != "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(dir + "/go.mod"); err == nil {
			return dir
		}
		parent := dir + "/.."
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func getPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, testDSN())
		if err != nil {
			poolErr = fmt.Errorf("connect test db: %w", err)
			return
		}

		if err := runMigrations(); err != nil {
			pool.Close()
			poolErr = err
			return
		}
		sharedPool = pool
	})
	return sharedPool, poolErr
}

// NewTestEnv connects to the test database, migrates it, and truncates all
// tables so the test starts clean.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool, err := getPool()
	if err != nil {
		t.Fatalf("test database unavailable: %v", err)
	}

	env := &TestEnv{Pool: pool, Store: postgres.NewStore(pool), t: t}
	env.CleanAll()
	return env
}
