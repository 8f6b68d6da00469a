package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagramgpt/diagramgpt/internal/api/shared"
	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/service"
)

// PreferenceAPI is the slice of the preference service the handler needs.
type PreferenceAPI interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.UserPreference, error)
	Update(ctx context.Context, userID string, update service.PreferenceUpdate) (*domain.UserPreference, error)
	Delete(ctx context.Context, userID string) error
}

// PreferenceHandler serves the per-user preference endpoints.
type PreferenceHandler struct {
	service PreferenceAPI
	logger  *slog.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(svc PreferenceAPI, log *slog.Logger) *PreferenceHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PreferenceHandler{service: svc, logger: log}
}

// Get handles GET /api/preferences/{user_id}. Missing preferences are
// created with defaults rather than returning 404.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	pref, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pref)
}

// Update handles PUT /api/preferences/{user_id}.
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	var req UpdatePreferenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pref, err := h.service.Update(r.Context(), userID, service.PreferenceUpdate{
		DefaultFormat:       req.DefaultFormat,
		DefaultLayout:       req.DefaultLayout,
		Theme:               req.Theme,
		EnableNotifications: req.EnableNotifications,
	})
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pref)
}

// Delete handles DELETE /api/preferences/{user_id}.
func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		respondGenerationError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
