package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	apiMiddleware "github.com/phrazzld/agency-api/internal/api/middleware"
	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
	"github.com/phrazzld/agency-api/internal/service"
	"github.com/phrazzld/agency-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	agencyStore  store.AgencyStore
	serviceStore store.ServiceStore
	userStore    store.UserStore

	resourceService *service.ResourceService

	metrics  *apiMiddleware.Metrics
	registry *prometheus.Registry
}

// newApplication creates an application over an already opened database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.agencyStore = sqlstore.NewAgencyStore(db, logger)
	app.serviceStore = sqlstore.NewServiceStore(db, logger)
	app.userStore = sqlstore.NewUserStore(db, cfg.Auth.BcryptCost, logger)

	var err error
	app.resourceService, err = service.NewResourceService(db, app.agencyStore, app.serviceStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource service: %w", err)
	}

	app.metrics = apiMiddleware.NewMetrics()
	app.registry = prometheus.NewRegistry()
	if err := app.registry.Register(app.metrics); err != nil {
		return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
	}
	if err := app.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}
	if err := app.registry.Register(collectors.NewDBStatsCollector(db, "agency_api")); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
