package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/events"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/service/review"
	"github.com/phrazzld/vocab-api/internal/sweeper"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	stores        review.Stores
	srsService    srs.Service
	eventEmitter  *events.InMemoryEventEmitter
	reviewService review.Service

	sweeper *sweeper.Sweeper
}

// newApplication wires the stores, the scheduler, and the review service over
// an established database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.stores = review.Stores{
		Cards:       postgres.NewPostgresCardStateStore(db, logger),
		Sessions:    postgres.NewPostgresSessionStore(db, logger),
		Preferences: postgres.NewPostgresPreferencesStore(db, logger),
	}

	app.srsService = srs.NewDefaultService()

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.reviewService = review.NewReviewService(
		app.stores,
		review.NewSQLTxRunner(db, app.stores),
		app.srsService,
		review.Config{
			MaxSessionLimit: cfg.Review.MaxSessionLimit,
			UpdateRetries:   cfg.Review.UpdateRetries,
			RetryBaseDelay:  cfg.Review.RetryBaseDelay,
			SweepBatchSize:  cfg.Sweeper.BatchSize,
		},
		logger,
		review.WithEventEmitter(app.eventEmitter),
	)

	if cfg.Sweeper.Enabled {
		sw, err := sweeper.New(app.reviewService, sweeper.Config{
			Interval:    cfg.Sweeper.Interval,
			IdleTimeout: cfg.Sweeper.IdleTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create session sweeper: %w", err)
		}
		app.sweeper = sw
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the background sweeper and serves HTTP until shutdown.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if app.sweeper != nil {
		if err := app.sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start session sweeper: %w", err)
		}
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
