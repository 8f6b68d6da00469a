package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/diagramgpt/diagramgpt/internal/api"
	apimiddleware "github.com/diagramgpt/diagramgpt/internal/api/middleware"
)

// setupRouter configures the chi router with middleware and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.RequestLogger(app.logger))

	diagramHandler := api.NewDiagramHandler(app.generationService, app.preferenceService, app.logger)
	ganttHandler := api.NewGanttHandler(app.generationService, app.preferenceService, app.logger)
	wbsHandler := api.NewWBSHandler(app.generationService, app.preferenceService, app.logger)
	preferenceHandler := api.NewPreferenceHandler(app.preferenceService, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.llmClient.ProviderName(), app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/diagram", func(r chi.Router) {
			r.Post("/generate", diagramHandler.Generate)
			r.Post("/preview", diagramHandler.Preview)
			r.Get("/history", diagramHandler.History)
			r.Get("/stats", diagramHandler.Stats)
			r.Get("/logs", diagramHandler.Logs)
			r.Get("/{id}", diagramHandler.Get)
			r.Delete("/{id}", diagramHandler.Delete)
		})

		r.Route("/gantt", func(r chi.Router) {
			r.Post("/generate", ganttHandler.Generate)
			r.Post("/preview", ganttHandler.Preview)
		})

		r.Route("/wbs", func(r chi.Router) {
			r.Post("/generate", wbsHandler.Generate)
			r.Post("/preview", wbsHandler.Preview)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/{user_id}", preferenceHandler.Get)
			r.Put("/{user_id}", preferenceHandler.Update)
			r.Delete("/{user_id}", preferenceHandler.Delete)
		})

		r.Get("/health", healthHandler.Ready)
	})

	r.Get("/health", healthHandler.Live)

	return r
}
