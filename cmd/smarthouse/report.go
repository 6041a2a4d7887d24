package main

import (
	"context"
	"fmt"
	"io"

	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/migrations"
)

// runReport prints the report for the configured house to out.
// Logs go to stderr so the report can be piped.
func runReport(ctx context.Context, configPath string, useDB bool, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Logging.Output = "stderr"
	log := logging.New(cfg.Logging, version)

	h, err := house.Build(cfg.House, log)
	if err != nil {
		return fmt.Errorf("building house: %w", err)
	}

	if useDB {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck // Read-only use

		if _, err := h.LoadFrom(ctx, house.NewSQLiteRepository(db.DB)); err != nil {
			return fmt.Errorf("loading saved state: %w", err)
		}
	}

	for _, line := range h.CreateReport() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

// openDatabase opens the configured database and applies pending migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
