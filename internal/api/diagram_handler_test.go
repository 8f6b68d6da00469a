package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/service"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// stubGenerationAPI is a canned-response GenerationAPI implementation.
type stubGenerationAPI struct {
	generateResult *service.GenerateResult
	generateErr    error
	generateParams []service.GenerateParams

	previewImage []byte
	previewErr   error

	diagrams []*domain.Diagram
	total    int

	getResult *domain.Diagram
	getErr    error
	deleteErr error

	stats    *domain.UsageStats
	statsErr error

	logEntries []*domain.GenerationLog
}

func (s *stubGenerationAPI) Generate(_ context.Context, params service.GenerateParams) (*service.GenerateResult, error) {
	s.generateParams = append(s.generateParams, params)
	return s.generateResult, s.generateErr
}

func (s *stubGenerationAPI) Preview(_ context.Context, _ domain.DiagramKind, _ string, _ domain.Format, _ string) ([]byte, error) {
	return s.previewImage, s.previewErr
}

func (s *stubGenerationAPI) History(_ context.Context, _ string, _, _ int) ([]*domain.Diagram, int, error) {
	return s.diagrams, s.total, nil
}

func (s *stubGenerationAPI) GetByID(_ context.Context, _ uuid.UUID) (*domain.Diagram, error) {
	return s.getResult, s.getErr
}

func (s *stubGenerationAPI) Delete(_ context.Context, _ uuid.UUID) error { return s.deleteErr }

func (s *stubGenerationAPI) Stats(_ context.Context, _ string, days int) (*domain.UsageStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	s.stats.PeriodDays = days
	return s.stats, nil
}

func (s *stubGenerationAPI) RecentLogs(_ context.Context, _, _ int) ([]*domain.GenerationLog, error) {
	return s.logEntries, nil
}

// stubPreferenceReader returns a fixed preference for every user.
type stubPreferenceReader struct {
	pref *domain.UserPreference
	err  error
}

func (s *stubPreferenceReader) Get(_ context.Context, _ string) (*domain.UserPreference, error) {
	return s.pref, s.err
}

func newDiagramRouter(stub *stubGenerationAPI) *chi.Mux {
	return newDiagramRouterWithPrefs(stub, nil)
}

func newDiagramRouterWithPrefs(stub *stubGenerationAPI, prefs PreferenceReader) *chi.Mux {
	h := NewDiagramHandler(stub, prefs, nil)
	r := chi.NewRouter()
	r.Post("/api/diagram/generate", h.Generate)
	r.Post("/api/diagram/preview", h.Preview)
	r.Get("/api/diagram/history", h.History)
	r.Get("/api/diagram/stats", h.Stats)
	r.Get("/api/diagram/logs", h.Logs)
	r.Get("/api/diagram/{id}", h.Get)
	r.Delete("/api/diagram/{id}", h.Delete)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any, accept string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateReturnsJSONWhenAccepted(t *testing.T) {
	t.Parallel()

	diagramID := uuid.New()
	stub := &stubGenerationAPI{
		generateResult: &service.GenerateResult{
			ImageBytes: []byte("<svg/>"),
			SourceCode: "digraph G { a -> b; }",
			DiagramID:  &diagramID,
		},
	}
	router := newDiagramRouter(stub)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "a flows to b"}, "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp DiagramResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "digraph G { a -> b; }", resp.DiagramDOT)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("<svg/>")), resp.ImageBase64)
	assert.Equal(t, "svg", resp.Format)
	require.NotNil(t, resp.DiagramID)
	assert.Equal(t, diagramID, *resp.DiagramID)

	// The handler defaults to svg and asks for a persisted artifact.
	require.Len(t, stub.generateParams, 1)
	assert.Equal(t, domain.FormatSVG, stub.generateParams[0].Format)
	assert.True(t, stub.generateParams[0].Save)
	assert.Equal(t, domain.KindGraphviz, stub.generateParams[0].Kind)
}

func TestGenerateReturnsRawImageByDefault(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		generateResult: &service.GenerateResult{
			ImageBytes: []byte("png-bytes"),
			SourceCode: "digraph G { a; }",
		},
	}
	router := newDiagramRouter(stub)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "one node", "format": "png"}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestGenerateFillsDefaultsFromPreferences(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		generateResult: &service.GenerateResult{
			ImageBytes: []byte("png-bytes"),
			SourceCode: "digraph G { a; }",
		},
	}
	prefs := &stubPreferenceReader{
		pref: &domain.UserPreference{DefaultFormat: domain.FormatPNG, DefaultLayout: "neato"},
	}
	router := newDiagramRouterWithPrefs(stub, prefs)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "a node", "user_id": "user-1"}, "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.generateParams, 1)
	assert.Equal(t, domain.FormatPNG, stub.generateParams[0].Format)
	assert.Equal(t, "neato", stub.generateParams[0].Layout)
}

func TestGenerateExplicitValuesBeatPreferences(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		generateResult: &service.GenerateResult{
			ImageBytes: []byte("<svg/>"),
			SourceCode: "digraph G { a; }",
		},
	}
	prefs := &stubPreferenceReader{
		pref: &domain.UserPreference{DefaultFormat: domain.FormatPNG, DefaultLayout: "neato"},
	}
	router := newDiagramRouterWithPrefs(stub, prefs)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "a node", "user_id": "user-1", "format": "svg", "layout": "circo"},
		"application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.generateParams, 1)
	assert.Equal(t, domain.FormatSVG, stub.generateParams[0].Format)
	assert.Equal(t, "circo", stub.generateParams[0].Layout)
}

func TestGenerateIgnoresPreferenceLookupFailure(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		generateResult: &service.GenerateResult{
			ImageBytes: []byte("<svg/>"),
			SourceCode: "digraph G { a; }",
		},
	}
	prefs := &stubPreferenceReader{err: store.ErrPreferenceNotFound}
	router := newDiagramRouterWithPrefs(stub, prefs)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "a node", "user_id": "user-2"}, "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.generateParams, 1)
	assert.Equal(t, domain.FormatSVG, stub.generateParams[0].Format)
	assert.Empty(t, stub.generateParams[0].Layout)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	router := newDiagramRouter(&stubGenerationAPI{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "empty prompt", body: map[string]string{"prompt": ""}},
		{name: "bad format", body: map[string]string{"prompt": "ok", "format": "pdf"}},
		{name: "bad layout", body: map[string]string{"prompt": "ok", "layout": "latex"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, router, "/api/diagram/generate", tc.body, "application/json")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGenerateMapsPipelineErrors(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		generateErr: service.NewDiagramGenerationError("failed to generate diagram from prompt",
			fmt.Errorf("wrapped: %w", domain.ErrValidation)),
	}
	router := newDiagramRouter(stub)

	rec := postJSON(t, router, "/api/diagram/generate",
		map[string]string{"prompt": "broken"}, "application/json")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid input", resp["error"])
	assert.Equal(t, "failed to generate diagram from prompt", resp["detail"])
}

func TestPreviewRendersSuppliedDOT(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{previewImage: []byte("<svg>preview</svg>")}
	router := newDiagramRouter(stub)

	rec := postJSON(t, router, "/api/diagram/preview",
		map[string]string{"dot": "digraph G { a -> b; }"}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg>preview</svg>", rec.Body.String())
}

func TestPreviewRejectsInvalidSource(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{
		previewErr: fmt.Errorf("%w: graph must start with digraph", domain.ErrValidation),
	}
	router := newDiagramRouter(stub)

	rec := postJSON(t, router, "/api/diagram/preview",
		map[string]string{"dot": "not a graph at all"}, "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryReturnsPaginatedSummaries(t *testing.T) {
	t.Parallel()

	d1, err := domain.NewDiagram("first", validHash(t), domain.KindGraphviz, "digraph G {}", domain.FormatSVG, "dot")
	require.NoError(t, err)
	d2, err := domain.NewDiagram("second", validHash(t), domain.KindMermaidGantt, "gantt", domain.FormatPNG, "mermaid")
	require.NoError(t, err)

	stub := &stubGenerationAPI{diagrams: []*domain.Diagram{d1, d2}, total: 42}
	router := newDiagramRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/diagram/history?limit=2&offset=4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Total)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 4, resp.Offset)
	require.Len(t, resp.Diagrams, 2)
	assert.Equal(t, "first", resp.Diagrams[0].Prompt)
	assert.Equal(t, "mermaid_gantt", resp.Diagrams[1].Kind)
}

func TestLogsReturnsRecentEntries(t *testing.T) {
	t.Parallel()

	entry := domain.NewGenerationLog("draw a graph", validHash(t), true)
	entry.WasCached = true

	stub := &stubGenerationAPI{logEntries: []*domain.GenerationLog{entry}}
	router := newDiagramRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/diagram/logs?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "draw a graph", resp.Logs[0].Prompt)
	assert.True(t, resp.Logs[0].WasCached)
}

func TestGetRejectsMalformedID(t *testing.T) {
	t.Parallel()

	router := newDiagramRouter(&stubGenerationAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/diagram/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReturnsNotFound(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{getErr: store.ErrDiagramNotFound}
	router := newDiagramRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/diagram/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Resource not found", resp["error"])
}

func TestDeleteReturnsNoContent(t *testing.T) {
	t.Parallel()

	router := newDiagramRouter(&stubGenerationAPI{})

	req := httptest.NewRequest(http.MethodDelete, "/api/diagram/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStatsUsesDaysParameter(t *testing.T) {
	t.Parallel()

	stub := &stubGenerationAPI{stats: &domain.UsageStats{TotalRequests: 10}}
	router := newDiagramRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/diagram/stats?days=30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.UsageStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.PeriodDays)
	assert.Equal(t, 10, resp.TotalRequests)
}

// validHash returns a syntactically valid 64-char prompt hash for fixtures.
func validHash(t *testing.T) string {
	t.Helper()
	h := ""
	for len(h) < 64 {
		h += "ab12"
	}
	return h
}
