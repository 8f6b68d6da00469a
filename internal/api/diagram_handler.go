package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diagramgpt/diagramgpt/internal/api/shared"
	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/render"
	"github.com/diagramgpt/diagramgpt/internal/service"
)

// GenerationAPI is the slice of the generation service the handlers need.
type GenerationAPI interface {
	Generate(ctx context.Context, params service.GenerateParams) (*service.GenerateResult, error)
	Preview(ctx context.Context, kind domain.DiagramKind, source string, format domain.Format, layout string) ([]byte, error)
	History(ctx context.Context, userID string, limit, offset int) ([]*domain.Diagram, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagram, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, userID string, days int) (*domain.UsageStats, error)
	RecentLogs(ctx context.Context, limit, offset int) ([]*domain.GenerationLog, error)
}

// PreferenceReader looks up stored preferences to pre-fill request defaults.
// Implemented by service.PreferenceService.
type PreferenceReader interface {
	Get(ctx context.Context, userID string) (*domain.UserPreference, error)
}

// DiagramHandler serves the Graphviz endpoints plus the kind-agnostic
// history and stats endpoints.
type DiagramHandler struct {
	service GenerationAPI
	prefs   PreferenceReader
	logger  *slog.Logger
}

// NewDiagramHandler creates a new DiagramHandler. The preference reader may
// be nil, which disables preference-based request defaults.
func NewDiagramHandler(svc GenerationAPI, prefs PreferenceReader, log *slog.Logger) *DiagramHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DiagramHandler{service: svc, prefs: prefs, logger: log}
}

// Generate handles POST /api/diagram/generate.
func (h *DiagramHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	applyPreferenceDefaults(r.Context(), h.prefs, req.UserID, &req.Format, &req.Layout)

	format, ok := parseFormat(w, r, req.Format)
	if !ok {
		return
	}

	result, err := h.service.Generate(r.Context(), service.GenerateParams{
		Prompt: strings.TrimSpace(req.Prompt),
		Kind:   domain.KindGraphviz,
		Format: format,
		Layout: req.Layout,
		UserID: req.UserID,
		Save:   true,
	})
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, DiagramResponse{
			DiagramDOT:  result.SourceCode,
			ImageBase64: base64.StdEncoding.EncodeToString(result.ImageBytes),
			Format:      string(format),
			DiagramID:   result.DiagramID,
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), result.ImageBytes)
}

// Preview handles POST /api/diagram/preview. It renders caller-supplied DOT
// without involving the LLM or the database.
func (h *DiagramHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewDiagramRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	format, ok := parseFormat(w, r, req.Format)
	if !ok {
		return
	}

	image, err := h.service.Preview(r.Context(), domain.KindGraphviz, req.DOT, format, req.Layout)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, DiagramResponse{
			DiagramDOT:  req.DOT,
			ImageBase64: base64.StdEncoding.EncodeToString(image),
			Format:      string(format),
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), image)
}

// History handles GET /api/diagram/history.
func (h *DiagramHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)
	if limit > 100 {
		limit = 100
	}

	diagrams, total, err := h.service.History(r.Context(), r.URL.Query().Get("user_id"), limit, offset)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	summaries := make([]DiagramSummary, 0, len(diagrams))
	for _, d := range diagrams {
		summaries = append(summaries, toDiagramSummary(d))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HistoryResponse{
		Diagrams: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// Get handles GET /api/diagram/{id}.
func (h *DiagramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	diagram, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, diagram)
}

// Delete handles DELETE /api/diagram/{id}.
func (h *DiagramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondGenerationError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Logs handles GET /api/diagram/logs.
func (h *DiagramHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit > 100 {
		limit = 100
	}

	entries, err := h.service.RecentLogs(r.Context(), limit, offset)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LogsResponse{
		Logs:   entries,
		Limit:  limit,
		Offset: offset,
	})
}

// Stats handles GET /api/diagram/stats.
func (h *DiagramHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)

	stats, err := h.service.Stats(r.Context(), r.URL.Query().Get("user_id"), days)
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// applyPreferenceDefaults fills format (and layout, when the pointer is
// non-nil) from the user's stored preferences when the request omits them.
// Missing preferences or lookup failures leave the request untouched.
func applyPreferenceDefaults(ctx context.Context, prefs PreferenceReader, userID string, format, layout *string) {
	if prefs == nil || userID == "" {
		return
	}

	needFormat := *format == ""
	needLayout := layout != nil && *layout == ""
	if !needFormat && !needLayout {
		return
	}

	pref, err := prefs.Get(ctx, userID)
	if err != nil {
		return
	}
	if needFormat {
		*format = string(pref.DefaultFormat)
	}
	if needLayout {
		*layout = pref.DefaultLayout
	}
}

// wantsJSON reports whether the client asked for a JSON envelope instead of
// raw image bytes.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeAndValidate decodes the body into v and validates it, writing the
// 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid input", err,
			shared.WithDetail(err.Error()))
		return false
	}
	return true
}

// parseFormat normalizes the requested output format, defaulting to svg.
func parseFormat(w http.ResponseWriter, r *http.Request, raw string) (domain.Format, bool) {
	if raw == "" {
		return domain.FormatSVG, true
	}
	format, err := domain.ParseFormat(raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return "", false
	}
	return format, true
}

// parseID extracts and parses the {id} path parameter.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid ID",
			fmt.Errorf("%w: %v", domain.ErrInvalidID, err))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// respondGenerationError maps a pipeline error to its status code and safe
// message. The underlying cause goes to the logs only.
func respondGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var genErr *service.DiagramGenerationError
	if errors.As(err, &genErr) && status < http.StatusInternalServerError {
		shared.RespondWithErrorAndLog(w, r, status, message, err, shared.WithDetail(genErr.Message))
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
