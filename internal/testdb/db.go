package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/agency-api/internal/ciutil"
	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/fixtures"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
)

// TestTimeout bounds setup work done by this package.
const TestTimeout = 30 * time.Second

// OpenSQLite returns a migrated, empty SQLite database in a temporary
// directory. The database is closed when the test ends.
//
// The pool is limited to one connection: SQLite serialises writers anyway and
// a single connection keeps lock waits out of the tests. Code under test must
// therefore not use the pool while it holds a transaction.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	path := filepath.Join(t.TempDir(), "agencies.db")
	db, err := sqlstore.Open(ctx, config.DatabaseConfig{
		Driver:       sqlstore.DriverSQLite,
		URL:          "file:" + path,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { CleanupDB(t, db) })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateUp, nil),
		"failed to apply migrations")
	return db
}

// Seeded returns OpenSQLite with the fixtures loaded.
func Seeded(t *testing.T) *sql.DB {
	t.Helper()

	db := OpenSQLite(t)
	LoadFixtures(t, db)
	return db
}

// LoadFixtures loads the fixtures into db with the cheapest bcrypt cost.
func LoadFixtures(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	require.NoError(t, fixtures.Load(ctx, db, bcrypt.MinCost, nil), "failed to load fixtures")
}

// CleanupDB closes db, logging rather than failing on error.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("warning: failed to close database: %v", err)
	}
}

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests.
func GetTestDatabaseURL() string {
	return ciutil.GetTestDatabaseURL(nil)
}

// ShouldSkipDatabaseTest reports whether no PostgreSQL database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// OpenPostgres connects to the configured PostgreSQL database and applies the
// migrations. It skips the test when no database is configured.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, config.DatabaseConfig{
		Driver:       sqlstore.DriverPostgres,
		URL:          GetTestDatabaseURL(),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, nil)
	require.NoError(t, err, "failed to connect to postgres")
	t.Cleanup(func() { CleanupDB(t, db) })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverPostgres, sqlstore.MigrateUp, nil),
		"failed to apply migrations")
	return db
}
