// Package main runs the vocabulary review API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, connects to the database, and serves until the
// process is signalled or ctx is cancelled. "migrate <command>" runs a
// migration command instead of serving.
func run(ctx context.Context, args []string) error {
	migrateCmd, args, migrating := splitMigrateArgs(args)

	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("auto_migrate", cfg.Database.AutoMigrate),
		slog.Bool("sweeper_enabled", cfg.Sweeper.Enabled))

	if migrating {
		// The command decides what to apply.
		cfg.Database.AutoMigrate = false
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrating {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, migrateCmd, log)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
