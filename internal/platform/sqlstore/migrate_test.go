package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
	"github.com/phrazzld/agency-api/internal/testdb"
)

func TestMigrateSQLite(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()

	version, err := sqlstore.SchemaVersion(ctx, db, sqlstore.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateStatus, nil))

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateDown, nil))
	version, err = sqlstore.SchemaVersion(ctx, db, sqlstore.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, sqlstore.MigrateUp, nil))
	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('agencies', 'services', 'agency_service', 'app_users')`,
	).Scan(&tables))
	assert.Equal(t, 4, tables)
}

func TestMigrateRejectsUnknownInput(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()

	assert.Error(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite, "sideways", nil))
	assert.Error(t, sqlstore.Migrate(ctx, db, "mysql", sqlstore.MigrateUp, nil))
}
