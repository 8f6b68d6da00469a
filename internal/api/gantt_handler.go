package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diagramgpt/diagramgpt/internal/api/shared"
	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/render"
	"github.com/diagramgpt/diagramgpt/internal/service"
)

// GanttHandler serves the Mermaid Gantt chart endpoints.
type GanttHandler struct {
	service GenerationAPI
	prefs   PreferenceReader
	logger  *slog.Logger
}

// NewGanttHandler creates a new GanttHandler.
func NewGanttHandler(svc GenerationAPI, prefs PreferenceReader, log *slog.Logger) *GanttHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GanttHandler{service: svc, prefs: prefs, logger: log}
}

// Generate handles POST /api/gantt/generate.
func (h *GanttHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	applyPreferenceDefaults(r.Context(), h.prefs, req.UserID, &req.Format, nil)

	format, ok := parseFormat(w, r, req.Format)
	if !ok {
		return
	}

	result, err := h.service.Generate(r.Context(), service.GenerateParams{
		Prompt: strings.TrimSpace(req.Prompt),
		Kind:   domain.KindMermaidGantt,
		Format: format,
		UserID: req.UserID,
		Save:   true,
	})
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, GanttResponse{
			MermaidCode: result.SourceCode,
			ImageBase64: base64.StdEncoding.EncodeToString(result.ImageBytes),
			Format:      string(format),
			DiagramID:   result.DiagramID,
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), result.ImageBytes)
}

// Preview handles POST /api/gantt/preview.
func (h *GanttHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewGanttRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	format, ok := parseFormat(w, r, req.Format)
	if !ok {
		return
	}

	image, err := h.service.Preview(r.Context(), domain.KindMermaidGantt, req.MermaidCode, format, "")
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, GanttResponse{
			MermaidCode: req.MermaidCode,
			ImageBase64: base64.StdEncoding.EncodeToString(image),
			Format:      string(format),
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), image)
}
