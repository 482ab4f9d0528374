// Package sqlstore implements the store interfaces on database/sql. The same
// queries run against PostgreSQL (through the pgx stdlib driver) and SQLite
// (through modernc.org/sqlite); only the migrations differ per dialect.
//
// Every store takes a store.DBTX so it can run against the pool or, through
// WithTx, inside a transaction started by store.RunInTransaction.
package sqlstore
