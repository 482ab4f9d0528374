// Package main implements the entry point for the agency directory API
// server, which serves agencies and the services they offer as JSON:API
// resources.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/fixtures"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
)

// options are the command line flags. Configuration proper comes from
// config.yaml and the environment.
type options struct {
	migrate string
	seed    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.migrate, "migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	flag.BoolVar(&opts.seed, "seed", false, "load the sample agencies, services and API user, then exit")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("agency-api: %v", err)
	}
}

// run wires the application together. Migration and seed requests are
// handled before the server starts and end the process on completion.
func run(ctx context.Context, opts options) error {
	cfg, err := initializeApp()
	if err != nil {
		return err
	}
	l := slog.Default()

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	switch {
	case opts.migrate != "":
		defer closeDB(db, l)
		return handleMigrations(ctx, db, cfg, opts.migrate, l)
	case opts.seed:
		defer closeDB(db, l)
		if err := fixtures.Load(ctx, db, cfg.Auth.BcryptCost, l); err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		l.Info("fixtures loaded", "api_key_user", fixtures.Username)
		return nil
	}

	if cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, db, cfg.Database.Driver, sqlstore.MigrateUp, l); err != nil {
			closeDB(db, l)
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		closeDB(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := logger.Setup(cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"debug", cfg.Server.Debug)

	return cfg, nil
}
