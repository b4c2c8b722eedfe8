// Package testdb provides utilities for database integration tests. It
// depends only on store interfaces and standard database packages, not on
// specific store implementations.
package testdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// IsIntegrationTestEnvironment returns true if a test database URL is set,
// indicating that integration tests can run.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns the database URL for tests. It checks
// DATABASE_URL and MNEMO_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("MNEMO_TEST_DB_URL")
}

// Open connects to the test database, skipping the test when no test
// database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

// SetupSchema runs the goose migrations against the test database.
func SetupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	root, err := findProjectRoot()
	require.NoError(t, err, "failed to find project root")

	migrationsDir := filepath.Join(root, "migrations")
	require.DirExists(t, migrationsDir, "migrations directory does not exist: %s", migrationsDir)

	goose.SetLogger(&testGooseLogger{t: t})
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, migrationsDir), "failed to run migrations")
}

// WithTx executes a test function within a transaction that is rolled back
// afterwards, so tests leave no residue and can run in parallel.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// findProjectRoot walks up from the working directory until it finds go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}

// testGooseLogger routes goose output through the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Logf(format, v...)
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Errorf(format, v...)
}
