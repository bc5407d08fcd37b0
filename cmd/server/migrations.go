package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-api/internal/platform/postgres"
)

// Migration commands accepted by "vocab-api migrate <command>".
const (
	migrateUp     = "up"
	migrateStatus = "status"
	migrateReset  = "reset"
)

// splitMigrateArgs reports whether args request a migration command and
// returns the command and the remaining flag arguments.
func splitMigrateArgs(args []string) (string, []string, bool) {
	if len(args) == 0 || args[0] != "migrate" {
		return "", args, false
	}
	if len(args) == 1 {
		return migrateStatus, nil, true
	}
	return args[1], args[2:], true
}

// handleMigrations runs a migration command against db.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	logger.Info("executing migrations", slog.String("command", command))

	switch command {
	case migrateUp:
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			return err
		}
	case migrateReset:
		if err := postgres.ResetMigrations(ctx, db, logger); err != nil {
			return err
		}
	case migrateStatus:
	default:
		return fmt.Errorf("unknown migration command %q (want %s, %s or %s)",
			command, migrateUp, migrateStatus, migrateReset)
	}

	version, err := postgres.MigrationVersion(ctx, db, logger)
	if err != nil {
		return err
	}
	logger.Info("migration status", slog.Int64("version", version))
	return nil
}
