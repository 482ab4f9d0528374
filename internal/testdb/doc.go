// Package testdb prepares databases for tests.
//
// OpenSQLite gives every test its own migrated SQLite file, so tests need no
// external services and never share state. Seeded additionally loads the
// fixtures. Tests against PostgreSQL use OpenPostgres, which skips unless
// DATABASE_URL is set, and WithTx to keep each test inside a transaction that
// is rolled back afterwards.
//
// Basic usage:
//
//	func TestAgencyStore(t *testing.T) {
//	    db := testdb.Seeded(t)
//	    agencies := sqlstore.NewAgencyStore(db, nil)
//	    ...
//	}
package testdb
