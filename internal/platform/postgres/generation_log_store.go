package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/platform/logger"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// PostgresGenerationLogStore implements the store.GenerationLogStore
// interface using a PostgreSQL database as the storage backend.
type PostgresGenerationLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationLogStore creates a new PostgreSQL implementation of
// the GenerationLogStore interface.
func NewPostgresGenerationLogStore(db store.DBTX, log *slog.Logger) *PostgresGenerationLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresGenerationLogStore{
		db:     db,
		logger: log.With(slog.String("component", "generation_log_store")),
	}
}

// Ensure PostgresGenerationLogStore implements store.GenerationLogStore
var _ store.GenerationLogStore = (*PostgresGenerationLogStore)(nil)

// WithTx implements store.GenerationLogStore.WithTx
func (s *PostgresGenerationLogStore) WithTx(tx store.DBTX) store.GenerationLogStore {
	return &PostgresGenerationLogStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.GenerationLogStore.Create
func (s *PostgresGenerationLogStore) Create(ctx context.Context, entry *domain.GenerationLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("generation log validation failed",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO generation_logs (id, prompt, prompt_hash, success, tokens_used,
			model_used, latency_ms, total_time_ms, error_message, error_type,
			was_cached, user_id, diagram_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Prompt,
		entry.PromptHash,
		entry.Success,
		entry.TokensUsed,
		nullString(entry.ModelUsed),
		entry.LatencyMs,
		entry.TotalTimeMs,
		nullString(entry.ErrorMessage),
		nullString(entry.ErrorType),
		entry.WasCached,
		nullString(entry.UserID),
		entry.DiagramID,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create generation log",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()))
		return MapError(err)
	}

	log.Debug("generation log created",
		slog.String("log_id", entry.ID.String()),
		slog.Bool("success", entry.Success),
		slog.Bool("was_cached", entry.WasCached))
	return nil
}

// List implements store.GenerationLogStore.List
func (s *PostgresGenerationLogStore) List(ctx context.Context, limit, offset int) ([]*domain.GenerationLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, prompt, prompt_hash, success, tokens_used, model_used,
			latency_ms, total_time_ms, error_message, error_type, was_cached,
			user_id, diagram_id, created_at
		FROM generation_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list generation logs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.GenerationLog{}
	for rows.Next() {
		var entry domain.GenerationLog
		var modelUsed, errorMessage, errorType, userID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.Prompt,
			&entry.PromptHash,
			&entry.Success,
			&entry.TokensUsed,
			&modelUsed,
			&entry.LatencyMs,
			&entry.TotalTimeMs,
			&errorMessage,
			&errorType,
			&entry.WasCached,
			&userID,
			&entry.DiagramID,
			&entry.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan generation log row", slog.String("error", err.Error()))
			return nil, err
		}

		entry.ModelUsed = modelUsed.String
		entry.ErrorMessage = errorMessage.String
		entry.ErrorType = errorType.String
		entry.UserID = userID.String
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}

// Stats implements store.GenerationLogStore.Stats
// It aggregates counters over entries created in the last `days` days,
// optionally narrowed to a single user.
func (s *PostgresGenerationLogStore) Stats(ctx context.Context, userID string, days int) (*domain.UsageStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	query := `
		SELECT
			COUNT(id),
			COALESCE(SUM(tokens_used), 0),
			COALESCE(AVG(latency_ms), 0),
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN was_cached THEN 1 ELSE 0 END), 0)
		FROM generation_logs
		WHERE created_at >= $1 AND ($2 = '' OR user_id = $2)
	`

	stats := &domain.UsageStats{PeriodDays: days}
	err := s.db.QueryRowContext(ctx, query, cutoff, userID).Scan(
		&stats.TotalRequests,
		&stats.TotalTokens,
		&stats.AvgLatencyMs,
		&stats.SuccessfulRequests,
		&stats.CachedRequests,
	)
	if err != nil {
		log.Error("failed to aggregate usage stats", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if stats.TotalRequests > 0 {
		stats.SuccessRate = round2(float64(stats.SuccessfulRequests) / float64(stats.TotalRequests) * 100)
		stats.CacheHitRate = round2(float64(stats.CachedRequests) / float64(stats.TotalRequests) * 100)
	}
	stats.AvgLatencyMs = round2(stats.AvgLatencyMs)

	return stats, nil
}

// DeleteOlderThan implements store.GenerationLogStore.DeleteOlderThan
func (s *PostgresGenerationLogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM generation_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		log.Error("failed to delete old generation logs",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		log.Info("deleted old generation logs",
			slog.Int64("count", deleted),
			slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
