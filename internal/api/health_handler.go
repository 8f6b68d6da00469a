package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/api/shared"
)

// Version is the API version reported by the health endpoints.
const Version = "1.0.0"

// HealthHandler serves the liveness and dependency probes.
type HealthHandler struct {
	db       *sql.DB
	provider string
	logger   *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. The db may be nil when the
// server runs without a database.
func NewHealthHandler(db *sql.DB, provider string, log *slog.Logger) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{db: db, provider: provider, logger: log}
}

// Live handles GET /health. It reports process liveness only.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready handles GET /api/health. It probes the database and checks that the
// Graphviz binaries are installed.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  Version,
		Database: "ok",
		Graphviz: "ok",
		Provider: h.provider,
	}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("health check: database ping failed", slog.String("error", err.Error()))
			resp.Database = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	} else {
		resp.Database = "not configured"
	}

	if _, err := exec.LookPath("dot"); err != nil {
		resp.Graphviz = "missing"
		if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}
