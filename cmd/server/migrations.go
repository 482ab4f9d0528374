package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
)

// handleMigrations runs one goose command against db. It's called from run
// when the -migrate flag is set.
func handleMigrations(
	ctx context.Context,
	db *sql.DB,
	cfg *config.Config,
	migrateCmd string,
	logger *slog.Logger,
) error {
	switch migrateCmd {
	case sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateReset,
		sqlstore.MigrateStatus, sqlstore.MigrateVersion:
	default:
		return fmt.Errorf(
			"unknown migration command %q (expected up, down, reset, status or version)",
			migrateCmd,
		)
	}

	logger.Info("Executing migrations",
		"command", migrateCmd,
		"driver", cfg.Database.Driver)

	if err := sqlstore.Migrate(ctx, db, cfg.Database.Driver, migrateCmd, logger); err != nil {
		return err
	}

	version, err := sqlstore.SchemaVersion(ctx, db, cfg.Database.Driver)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Migrations finished", "command", migrateCmd, "schema_version", version)
	return nil
}
