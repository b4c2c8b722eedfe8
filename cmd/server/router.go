package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelterwood/mnemo/internal/api"
	apiMiddleware "github.com/shelterwood/mnemo/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenVerifier)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/collections/{collectionID}/items/{itemID}/review", studyHandler.RateItem)
			r.Get("/collections/{collectionID}/batch", studyHandler.GetNextBatch)
			r.Get("/collections/{collectionID}/mastery", studyHandler.GetMasteryStats)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
