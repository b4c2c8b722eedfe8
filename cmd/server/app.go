package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shelterwood/mnemo/internal/auth"
	"github.com/shelterwood/mnemo/internal/config"
	"github.com/shelterwood/mnemo/internal/domain/srs"
	"github.com/shelterwood/mnemo/internal/mastery"
	"github.com/shelterwood/mnemo/internal/platform/postgres"
	"github.com/shelterwood/mnemo/internal/service/study"
	"github.com/shelterwood/mnemo/internal/session"
	"github.com/shelterwood/mnemo/internal/store"
)

// application holds the shared application dependencies to simplify wiring
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	itemStore   store.ItemStore
	recordStore store.ReviewRecordStore

	// Service interfaces
	tokenVerifier auth.TokenVerifier
	srsService    srs.Service
	studyService  study.StudyService
}

// newApplication creates an application instance with all dependencies
// initialized. Core dependencies (configuration, logger, database) must be
// established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenVerifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	logger.Info("token verification initialized")

	app.itemStore = postgres.NewItemStore(db, logger)
	app.recordStore = postgres.NewReviewRecordStore(db, logger)
	logger.Info("stores initialized")

	app.srsService = srs.NewDefaultService()

	selector := session.NewSelector(&session.Params{
		SessionCap: cfg.Study.SessionCap,
		NewItemLimits: map[session.Mode]int{
			session.ModeQuick:    cfg.Study.QuickNewLimit,
			session.ModeStandard: cfg.Study.StandardNewLimit,
			session.ModeThorough: cfg.Study.ThoroughNewLimit,
		},
	}, nil)

	masteryParams := mastery.NewDefaultParams()
	masteryParams.MasteredThreshold = cfg.Study.MasteredThreshold
	aggregator := mastery.NewAggregator(masteryParams)

	app.studyService = study.NewStudyService(
		db,
		app.itemStore,
		app.recordStore,
		app.srsService,
		selector,
		aggregator,
		logger,
	)
	logger.Info("study service initialized",
		"session_cap", cfg.Study.SessionCap,
		"standard_new_limit", cfg.Study.StandardNewLimit)

	return app, nil
}

// serve starts the HTTP server and blocks until shutdown.
func (app *application) serve(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}
