package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/platform/logger"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// PostgresDiagramStore implements the store.DiagramStore interface using a
// PostgreSQL database as the storage backend.
type PostgresDiagramStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDiagramStore creates a new PostgreSQL implementation of the
// DiagramStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresDiagramStore(db store.DBTX, log *slog.Logger) *PostgresDiagramStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresDiagramStore{
		db:     db,
		logger: log.With(slog.String("component", "diagram_store")),
	}
}

// Ensure PostgresDiagramStore implements store.DiagramStore
var _ store.DiagramStore = (*PostgresDiagramStore)(nil)

// WithTx implements store.DiagramStore.WithTx
func (s *PostgresDiagramStore) WithTx(tx store.DBTX) store.DiagramStore {
	return &PostgresDiagramStore{
		db:     tx,
		logger: s.logger,
	}
}

const diagramColumns = `id, prompt, prompt_hash, kind, source_code, format, layout,
		image_data, user_id, token_count, generation_time_ms, created_at, updated_at`

// Create implements store.DiagramStore.Create
func (s *PostgresDiagramStore) Create(ctx context.Context, diagram *domain.Diagram) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := diagram.Validate(); err != nil {
		log.Warn("diagram validation failed during create",
			slog.String("error", err.Error()),
			slog.String("diagram_id", diagram.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO diagrams (id, prompt, prompt_hash, kind, source_code, format, layout,
			image_data, user_id, token_count, generation_time_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		diagram.ID,
		diagram.Prompt,
		diagram.PromptHash,
		string(diagram.Kind),
		diagram.SourceCode,
		string(diagram.Format),
		diagram.Layout,
		nullString(diagram.ImageData),
		nullString(diagram.UserID),
		diagram.TokenCount,
		diagram.GenerationTimeMs,
		diagram.CreatedAt,
		diagram.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create diagram",
			slog.String("error", err.Error()),
			slog.String("diagram_id", diagram.ID.String()))
		return MapError(err)
	}

	log.Info("diagram created",
		slog.String("diagram_id", diagram.ID.String()),
		slog.String("kind", string(diagram.Kind)),
		slog.String("prompt_hash", diagram.PromptHash))
	return nil
}

// GetByID implements store.DiagramStore.GetByID
func (s *PostgresDiagramStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + diagramColumns + `
		FROM diagrams
		WHERE id = $1
	`

	diagram, err := scanDiagram(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("diagram not found", slog.String("diagram_id", id.String()))
			return nil, store.ErrDiagramNotFound
		}
		log.Error("failed to get diagram by ID",
			slog.String("error", err.Error()),
			slog.String("diagram_id", id.String()))
		return nil, MapError(err)
	}

	return diagram, nil
}

// FindByPromptHash implements store.DiagramStore.FindByPromptHash
// It returns the newest diagram matching the fingerprint, format and layout.
func (s *PostgresDiagramStore) FindByPromptHash(
	ctx context.Context,
	promptHash string,
	format domain.Format,
	layout string,
) (*domain.Diagram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + diagramColumns + `
		FROM diagrams
		WHERE prompt_hash = $1 AND format = $2 AND layout = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	diagram, err := scanDiagram(s.db.QueryRowContext(ctx, query, promptHash, string(format), layout))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no cached diagram for fingerprint",
				slog.String("prompt_hash", promptHash))
			return nil, store.ErrDiagramNotFound
		}
		log.Error("failed to find diagram by prompt hash",
			slog.String("error", err.Error()),
			slog.String("prompt_hash", promptHash))
		return nil, MapError(err)
	}

	log.Debug("cache hit for fingerprint",
		slog.String("prompt_hash", promptHash),
		slog.String("diagram_id", diagram.ID.String()))
	return diagram, nil
}

// List implements store.DiagramStore.List
func (s *PostgresDiagramStore) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Diagram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + diagramColumns + `
		FROM diagrams
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list diagrams", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	diagrams := []*domain.Diagram{}
	for rows.Next() {
		diagram, err := scanDiagram(rows)
		if err != nil {
			log.Error("failed to scan diagram row", slog.String("error", err.Error()))
			return nil, err
		}
		diagrams = append(diagrams, diagram)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed diagrams", slog.Int("count", len(diagrams)))
	return diagrams, nil
}

// Count implements store.DiagramStore.Count
func (s *PostgresDiagramStore) Count(ctx context.Context, userID string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM diagrams WHERE ($1 = '' OR user_id = $1)`, userID).Scan(&count)
	if err != nil {
		log.Error("failed to count diagrams", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return count, nil
}

// Delete implements store.DiagramStore.Delete
func (s *PostgresDiagramStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete diagram",
			slog.String("error", err.Error()),
			slog.String("diagram_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "diagram"); err != nil {
		log.Debug("diagram not found for delete", slog.String("diagram_id", id.String()))
		return store.ErrDiagramNotFound
	}

	log.Info("diagram deleted", slog.String("diagram_id", id.String()))
	return nil
}

// DeleteOlderThan implements store.DiagramStore.DeleteOlderThan
func (s *PostgresDiagramStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE created_at < $1`, cutoff)
	if err != nil {
		log.Error("failed to delete old diagrams",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		log.Info("deleted old diagrams",
			slog.Int64("count", deleted),
			slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiagram(row rowScanner) (*domain.Diagram, error) {
	var diagram domain.Diagram
	var kind, format string
	var imageData, userID sql.NullString

	err := row.Scan(
		&diagram.ID,
		&diagram.Prompt,
		&diagram.PromptHash,
		&kind,
		&diagram.SourceCode,
		&format,
		&diagram.Layout,
		&imageData,
		&userID,
		&diagram.TokenCount,
		&diagram.GenerationTimeMs,
		&diagram.CreatedAt,
		&diagram.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	diagram.Kind = domain.DiagramKind(kind)
	diagram.Format = domain.Format(format)
	diagram.ImageData = imageData.String
	diagram.UserID = userID.String
	return &diagram, nil
}

// nullString maps an empty string to NULL for optional text columns.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
