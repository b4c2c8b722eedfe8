package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/shelterwood/mnemo/internal/config"
)

const migrationsDir = "migrations"

// slogGooseLogger adapts the goose logger interface to slog. Fatalf does
// not exit; the error propagates back to main which owns process exit.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes the given goose command (up, down, status) against
// the configured database.
func runMigrations(cfg *config.Config, command string) error {
	log := slog.Default().With("component", "migrations", "command", command)

	goose.SetLogger(&slogGooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database connection", "error", closeErr)
		}
	}()

	start := time.Now()
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q (expected up, down, or status)", command)
	}
	if err != nil {
		return err
	}

	log.Info("migration operation completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
