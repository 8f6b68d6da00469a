package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/platform/logger"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// PostgresUserPreferenceStore implements the store.UserPreferenceStore
// interface using a PostgreSQL database as the storage backend.
type PostgresUserPreferenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserPreferenceStore creates a new PostgreSQL implementation of
// the UserPreferenceStore interface.
func NewPostgresUserPreferenceStore(db store.DBTX, log *slog.Logger) *PostgresUserPreferenceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresUserPreferenceStore{
		db:     db,
		logger: log.With(slog.String("component", "preference_store")),
	}
}

// Ensure PostgresUserPreferenceStore implements store.UserPreferenceStore
var _ store.UserPreferenceStore = (*PostgresUserPreferenceStore)(nil)

// WithTx implements store.UserPreferenceStore.WithTx
func (s *PostgresUserPreferenceStore) WithTx(tx store.DBTX) store.UserPreferenceStore {
	return &PostgresUserPreferenceStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByUserID implements store.UserPreferenceStore.GetByUserID
func (s *PostgresUserPreferenceStore) GetByUserID(ctx context.Context, userID string) (*domain.UserPreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, default_format, default_layout, theme,
			enable_notifications, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`

	var pref domain.UserPreference
	var format string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.ID,
		&pref.UserID,
		&format,
		&pref.DefaultLayout,
		&pref.Theme,
		&pref.EnableNotifications,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user preferences not found", slog.String("user_id", userID))
			return nil, store.ErrPreferenceNotFound
		}
		log.Error("failed to get user preferences",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	pref.DefaultFormat = domain.Format(format)
	return &pref, nil
}

// Upsert implements store.UserPreferenceStore.Upsert
// It inserts the preferences or overwrites the existing row for the user.
func (s *PostgresUserPreferenceStore) Upsert(ctx context.Context, pref *domain.UserPreference) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := pref.Validate(); err != nil {
		log.Warn("preference validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_preferences (id, user_id, default_format, default_layout,
			theme, enable_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			default_format = EXCLUDED.default_format,
			default_layout = EXCLUDED.default_layout,
			theme = EXCLUDED.theme,
			enable_notifications = EXCLUDED.enable_notifications,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		pref.ID,
		pref.UserID,
		string(pref.DefaultFormat),
		pref.DefaultLayout,
		pref.Theme,
		pref.EnableNotifications,
		pref.CreatedAt,
		pref.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to upsert user preferences",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID))
		return MapError(err)
	}

	log.Info("user preferences saved", slog.String("user_id", pref.UserID))
	return nil
}

// Delete implements store.UserPreferenceStore.Delete
func (s *PostgresUserPreferenceStore) Delete(ctx context.Context, userID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_preferences WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to delete user preferences",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user preference"); err != nil {
		log.Debug("user preferences not found for delete", slog.String("user_id", userID))
		return store.ErrPreferenceNotFound
	}

	log.Info("user preferences deleted", slog.String("user_id", userID))
	return nil
}
