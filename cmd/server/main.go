// Package main implements the entry point for the mnemo scheduling server,
// which plans spaced-repetition study sessions and tracks mastery over
// collections of learning items.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver

	"github.com/shelterwood/mnemo/internal/config"
	"github.com/shelterwood/mnemo/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run database migrations (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if migrateCmd != "" {
		if err := runMigrations(cfg, migrateCmd); err != nil {
			return fmt.Errorf("migration %q failed: %w", migrateCmd, err)
		}
		return nil
	}

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.serve(ctx); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	return nil
}
