// Package service contains the business logic orchestrating diagram
// generation: cache lookup, LLM calls, source extraction, rendering,
// persistence and audit logging.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/extract"
	"github.com/diagramgpt/diagramgpt/internal/fingerprint"
	"github.com/diagramgpt/diagramgpt/internal/llm"
	"github.com/diagramgpt/diagramgpt/internal/platform/logger"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// Error type labels recorded in generation logs.
const (
	errorTypeLLM        = "LLMError"
	errorTypeValidation = "ValidationError"
	errorTypeRender     = "RenderError"
)

// CodeGenerator produces diagram source text from a prompt. Implemented by
// llm.Client.
type CodeGenerator interface {
	Generate(ctx context.Context, kind domain.DiagramKind, prompt string) (llm.Result, error)
}

// Renderers dispatches render requests by diagram kind. Implemented by
// render.Registry.
type Renderers interface {
	Render(ctx context.Context, kind domain.DiagramKind, layout, source string, format domain.Format) ([]byte, error)
}

// GenerateParams are the inputs for one generation request.
type GenerateParams struct {
	Prompt string
	Kind   domain.DiagramKind
	Format domain.Format
	// Layout is the Graphviz engine for graphviz diagrams. Ignored for
	// other kinds, which always use their fixed renderer tag.
	Layout string
	UserID string
	// Save controls whether the artifact is persisted. Preview-style
	// callers set it to false.
	Save bool
}

// GenerateResult is the outcome of one generation request.
type GenerateResult struct {
	ImageBytes  []byte
	SourceCode  string
	DiagramID   *uuid.UUID
	WasCached   bool
	TokensUsed  *int
	LatencyMs   int
	TotalTimeMs int
	ModelUsed   string
}

// GenerationService orchestrates the full generation pipeline.
type GenerationService struct {
	diagrams        store.DiagramStore
	logs            store.GenerationLogStore
	generator       CodeGenerator
	renderers       Renderers
	cacheEnabled    bool
	maxPromptLength int
	logger          *slog.Logger
	now             func() time.Time
}

// NewGenerationService creates the orchestrator. All dependencies are
// required except the logger.
func NewGenerationService(
	diagrams store.DiagramStore,
	logs store.GenerationLogStore,
	generator CodeGenerator,
	renderers Renderers,
	cacheEnabled bool,
	maxPromptLength int,
	log *slog.Logger,
) *GenerationService {
	if log == nil {
		log = slog.Default()
	}
	return &GenerationService{
		diagrams:        diagrams,
		logs:            logs,
		generator:       generator,
		renderers:       renderers,
		cacheEnabled:    cacheEnabled,
		maxPromptLength: maxPromptLength,
		logger:          log,
		now:             time.Now,
	}
}

// Generate runs the complete workflow: cache check, LLM generation, source
// extraction, rendering, persistence and audit logging.
//
// Persistence failures are logged but never fail a request that already has
// a rendered image. Audit log writes are best-effort for the same reason.
func (s *GenerationService) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	start := s.now()
	log := logger.FromContextOrDefault(ctx, s.logger)

	layout, err := s.resolveLayout(params.Kind, params.Layout)
	if err != nil {
		return nil, err
	}
	if err := s.validateParams(params); err != nil {
		return nil, err
	}

	hash := fingerprint.Hash(params.Prompt, string(params.Format), layout)

	log.Info("generating diagram",
		slog.String("kind", string(params.Kind)),
		slog.String("format", string(params.Format)),
		slog.String("layout", layout),
		slog.String("prompt_hash", fingerprint.Truncate(hash, 12)))

	// Step 1: cache lookup
	if s.cacheEnabled && params.Save {
		if result, ok := s.fromCache(ctx, params, hash, layout); ok {
			return result, nil
		}
	}

	// Step 2: LLM generation
	genResult, err := s.generator.Generate(ctx, params.Kind, params.Prompt)
	if err != nil {
		s.logFailure(ctx, params, hash, errorTypeLLM, err, nil, nil)
		return nil, NewDiagramGenerationError("failed to generate diagram from prompt", err)
	}

	// Step 3: extract source code from the raw response
	source, err := extract.Code(genResult.Text, params.Kind)
	if err != nil {
		s.logFailure(ctx, params, hash, errorTypeValidation, err, genResult.TokensUsed, &genResult.LatencyMs)
		return nil, NewDiagramGenerationError("generated code failed validation", err)
	}

	// Step 4: render
	imageBytes, err := s.renderers.Render(ctx, params.Kind, layout, source, params.Format)
	if err != nil {
		s.logFailure(ctx, params, hash, errorTypeRender, err, genResult.TokensUsed, &genResult.LatencyMs)
		return nil, NewDiagramGenerationError("failed to render diagram", err)
	}

	// Step 5: persist, never failing the request
	var diagramID *uuid.UUID
	if params.Save {
		if id := s.persist(ctx, params, hash, layout, source, imageBytes, genResult); id != nil {
			diagramID = id
		}
	}

	// Step 6: audit log, best-effort
	totalTime := s.elapsedMs(start)
	entry := domain.NewGenerationLog(params.Prompt, hash, true)
	entry.TokensUsed = genResult.TokensUsed
	entry.ModelUsed = genResult.ModelUsed
	entry.LatencyMs = &genResult.LatencyMs
	entry.TotalTimeMs = &totalTime
	entry.UserID = params.UserID
	entry.DiagramID = diagramID
	s.writeLog(ctx, entry)

	log.Info("diagram generated",
		slog.String("kind", string(params.Kind)),
		slog.Int("total_time_ms", totalTime),
		slog.Int("llm_latency_ms", genResult.LatencyMs),
		slog.Int("image_bytes", len(imageBytes)))

	return &GenerateResult{
		ImageBytes:  imageBytes,
		SourceCode:  source,
		DiagramID:   diagramID,
		TokensUsed:  genResult.TokensUsed,
		LatencyMs:   genResult.LatencyMs,
		TotalTimeMs: totalTime,
		ModelUsed:   genResult.ModelUsed,
	}, nil
}

// Preview renders user-supplied source code without touching the LLM or the
// database.
func (s *GenerationService) Preview(
	ctx context.Context,
	kind domain.DiagramKind,
	source string,
	format domain.Format,
	layoutOrEngine string,
) ([]byte, error) {
	layout, err := s.resolveLayout(kind, layoutOrEngine)
	if err != nil {
		return nil, err
	}

	imageBytes, err := s.renderers.Render(ctx, kind, layout, source, format)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidFormat) ||
			errors.Is(err, domain.ErrInvalidEngine) || errors.Is(err, domain.ErrInvalidKind) {
			return nil, err
		}
		return nil, NewDiagramGenerationError("failed to render preview", err)
	}
	return imageBytes, nil
}

// History returns stored diagrams, newest first, with the total count for
// pagination. An empty userID lists diagrams for all users.
func (s *GenerationService) History(ctx context.Context, userID string, limit, offset int) ([]*domain.Diagram, int, error) {
	diagrams, err := s.diagrams.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.diagrams.Count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return diagrams, total, nil
}

// GetByID returns a single stored diagram.
func (s *GenerationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagram, error) {
	return s.diagrams.GetByID(ctx, id)
}

// Delete removes a stored diagram.
func (s *GenerationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.diagrams.Delete(ctx, id)
}

// Stats aggregates generation log counters over the given window. An empty
// userID aggregates across all users.
func (s *GenerationService) Stats(ctx context.Context, userID string, days int) (*domain.UsageStats, error) {
	return s.logs.Stats(ctx, userID, days)
}

// RecentLogs returns the latest generation audit entries, newest first.
func (s *GenerationService) RecentLogs(ctx context.Context, limit, offset int) ([]*domain.GenerationLog, error) {
	return s.logs.List(ctx, limit, offset)
}

// resolveLayout normalizes the layout for a kind. Graphviz takes any
// allow-listed engine; the remote kinds always use their fixed tag so cache
// fingerprints stay disjoint across kinds.
func (s *GenerationService) resolveLayout(kind domain.DiagramKind, layout string) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	if kind != domain.KindGraphviz {
		return kind.DefaultLayout(), nil
	}

	if layout == "" {
		return kind.DefaultLayout(), nil
	}
	if !domain.IsValidEngine(layout) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEngine, layout)
	}
	return layout, nil
}

func (s *GenerationService) validateParams(params GenerateParams) error {
	if params.Prompt == "" {
		return domain.ErrEmptyPrompt
	}
	if s.maxPromptLength > 0 && len(params.Prompt) > s.maxPromptLength {
		return fmt.Errorf("%w: prompt exceeds %d characters", domain.ErrValidation, s.maxPromptLength)
	}
	if !params.Format.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidFormat, params.Format)
	}
	return nil
}

// fromCache serves a previous artifact for an identical fingerprint. The
// stored image is reused when present; otherwise the stored source is
// re-rendered. Any failure falls through to fresh generation.
func (s *GenerationService) fromCache(
	ctx context.Context,
	params GenerateParams,
	hash, layout string,
) (*GenerateResult, bool) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cached, err := s.diagrams.FindByPromptHash(ctx, hash, params.Format, layout)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("cache lookup failed, generating fresh",
				slog.String("error", err.Error()),
				slog.String("prompt_hash", hash))
		}
		return nil, false
	}

	var imageBytes []byte
	if cached.ImageData != "" {
		imageBytes, err = base64.StdEncoding.DecodeString(cached.ImageData)
		if err != nil {
			log.Warn("stored image data is corrupt, re-rendering",
				slog.String("diagram_id", cached.ID.String()),
				slog.String("error", err.Error()))
			// DecodeString returns the partially decoded prefix alongside
			// its error; discard it so the re-render path runs.
			imageBytes = nil
		}
	}
	if imageBytes == nil {
		imageBytes, err = s.renderers.Render(ctx, params.Kind, layout, cached.SourceCode, params.Format)
		if err != nil {
			log.Warn("failed to re-render cached diagram, generating fresh",
				slog.String("diagram_id", cached.ID.String()),
				slog.String("error", err.Error()))
			return nil, false
		}
	}

	log.Info("serving cached diagram",
		slog.String("diagram_id", cached.ID.String()),
		slog.String("prompt_hash", fingerprint.Truncate(hash, 12)))

	entry := domain.NewGenerationLog(params.Prompt, hash, true)
	entry.WasCached = true
	entry.UserID = params.UserID
	entry.DiagramID = &cached.ID
	s.writeLog(ctx, entry)

	return &GenerateResult{
		ImageBytes: imageBytes,
		SourceCode: cached.SourceCode,
		DiagramID:  &cached.ID,
		WasCached:  true,
		TokensUsed: cached.TokenCount,
	}, true
}

// persist stores the artifact. Failures are logged and swallowed.
func (s *GenerationService) persist(
	ctx context.Context,
	params GenerateParams,
	hash, layout, source string,
	imageBytes []byte,
	genResult llm.Result,
) *uuid.UUID {
	log := logger.FromContextOrDefault(ctx, s.logger)

	diagram, err := domain.NewDiagram(params.Prompt, hash, params.Kind, source, params.Format, layout)
	if err != nil {
		log.Error("failed to build diagram entity", slog.String("error", err.Error()))
		return nil
	}
	diagram.ImageData = base64.StdEncoding.EncodeToString(imageBytes)
	diagram.UserID = params.UserID
	diagram.TokenCount = genResult.TokensUsed
	diagram.GenerationTimeMs = &genResult.LatencyMs

	if err := s.diagrams.Create(ctx, diagram); err != nil {
		log.Error("failed to save diagram, continuing",
			slog.String("error", err.Error()),
			slog.String("diagram_id", diagram.ID.String()))
		return nil
	}

	log.Info("diagram saved", slog.String("diagram_id", diagram.ID.String()))
	return &diagram.ID
}

// logFailure records a failed generation attempt. Best-effort.
func (s *GenerationService) logFailure(
	ctx context.Context,
	params GenerateParams,
	hash, errorType string,
	cause error,
	tokens *int,
	latencyMs *int,
) {
	entry := domain.NewGenerationLog(params.Prompt, hash, false)
	entry.ErrorMessage = cause.Error()
	entry.ErrorType = errorType
	entry.TokensUsed = tokens
	entry.LatencyMs = latencyMs
	entry.UserID = params.UserID
	s.writeLog(ctx, entry)
}

// writeLog persists a generation log entry without propagating failures.
func (s *GenerationService) writeLog(ctx context.Context, entry *domain.GenerationLog) {
	if err := s.logs.Create(ctx, entry); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to write generation log",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()))
	}
}

func (s *GenerationService) elapsedMs(start time.Time) int {
	return int(s.now().Sub(start) / time.Millisecond)
}
