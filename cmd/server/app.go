package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/llm"
	"github.com/diagramgpt/diagramgpt/internal/platform/postgres"
	"github.com/diagramgpt/diagramgpt/internal/render"
	"github.com/diagramgpt/diagramgpt/internal/service"
	"github.com/diagramgpt/diagramgpt/internal/store"
	"github.com/diagramgpt/diagramgpt/internal/task"
)

// application holds the shared application dependencies so construction and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	diagramStore    store.DiagramStore
	logStore        store.GenerationLogStore
	preferenceStore store.UserPreferenceStore

	// Services
	llmClient         *llm.Client
	renderRegistry    *render.Registry
	generationService *service.GenerationService
	preferenceService *service.PreferenceService

	// Background jobs
	sweeper *task.RetentionSweeper
}

// newApplication wires up stores, the LLM client, the render registry, and
// the services, then starts the retention sweeper.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.diagramStore = postgres.NewPostgresDiagramStore(db, logger)
	app.logStore = postgres.NewPostgresGenerationLogStore(db, logger)
	app.preferenceStore = postgres.NewPostgresUserPreferenceStore(db, logger)

	var err error
	app.llmClient, err = llm.NewClient(ctx, cfg.LLM, logger.With(slog.String("component", "llm_client")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	logger.Info("LLM client initialized", slog.String("provider", app.llmClient.ProviderName()))

	app.renderRegistry = render.NewRegistry(cfg.Render, logger)

	app.generationService = service.NewGenerationService(
		app.diagramStore,
		app.logStore,
		app.llmClient,
		app.renderRegistry,
		cfg.Cache.Enabled,
		cfg.LLM.MaxPromptLength,
		logger,
	)
	app.preferenceService = service.NewPreferenceService(app.preferenceStore, logger)

	app.sweeper = task.NewRetentionSweeper(db, app.diagramStore, app.logStore, cfg.Task, logger)
	app.sweeper.Start()

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
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
