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

// WBSHandler serves the PlantUML work breakdown structure endpoints.
type WBSHandler struct {
	service GenerationAPI
	prefs   PreferenceReader
	logger  *slog.Logger
}

// NewWBSHandler creates a new WBSHandler.
func NewWBSHandler(svc GenerationAPI, prefs PreferenceReader, log *slog.Logger) *WBSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WBSHandler{service: svc, prefs: prefs, logger: log}
}

// Generate handles POST /api/wbs/generate.
func (h *WBSHandler) Generate(w http.ResponseWriter, r *http.Request) {
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
		Kind:   domain.KindPlantUMLWBS,
		Format: format,
		UserID: req.UserID,
		Save:   true,
	})
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, WBSResponse{
			PlantUMLCode: result.SourceCode,
			ImageBase64:  base64.StdEncoding.EncodeToString(result.ImageBytes),
			Format:       string(format),
			DiagramID:    result.DiagramID,
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), result.ImageBytes)
}

// Preview handles POST /api/wbs/preview.
func (h *WBSHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewWBSRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	format, ok := parseFormat(w, r, req.Format)
	if !ok {
		return
	}

	image, err := h.service.Preview(r.Context(), domain.KindPlantUMLWBS, req.PlantUMLCode, format, "")
	if err != nil {
		respondGenerationError(w, r, err)
		return
	}

	if wantsJSON(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, WBSResponse{
			PlantUMLCode: req.PlantUMLCode,
			ImageBase64:  base64.StdEncoding.EncodeToString(image),
			Format:       string(format),
		})
		return
	}
	shared.RespondWithImage(w, r, render.MimeType(format), image)
}
