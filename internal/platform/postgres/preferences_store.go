package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

// PostgresPreferencesStore implements the store.PreferencesStore interface.
type PostgresPreferencesStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPreferencesStore creates a new PostgreSQL implementation of the PreferencesStore interface.
func NewPostgresPreferencesStore(db store.DBTX, logger *slog.Logger) *PostgresPreferencesStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPreferencesStore{
		db:     db,
		logger: logger.With(slog.String("component", "preferences_store")),
	}
}

var _ store.PreferencesStore = (*PostgresPreferencesStore)(nil)

// WithTx implements store.PreferencesStore.WithTx
func (s *PostgresPreferencesStore) WithTx(tx *sql.Tx) store.PreferencesStore {
	return &PostgresPreferencesStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.PreferencesStore.Get
func (s *PostgresPreferencesStore) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, daily_review_limit, daily_new_card_limit, session_goal,
		       maximum_interval_days, default_review_mode,
		       included_word_types, excluded_word_types
		FROM review_preferences
		WHERE user_id = $1
	`

	var (
		prefs              domain.ReviewPreferences
		included, excluded []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.DailyReviewLimit,
		&prefs.DailyNewCardLimit,
		&prefs.SessionGoal,
		&prefs.MaximumIntervalDays,
		&prefs.DefaultReviewMode,
		&included,
		&excluded,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no saved preferences, using defaults", slog.String("user_id", userID.String()))
			return domain.DefaultReviewPreferences(userID), nil
		}
		log.Error("failed to get review preferences",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if err := json.Unmarshal(included, &prefs.IncludedWordTypes); err != nil {
		return nil, fmt.Errorf("failed to decode included word types: %w", err)
	}
	if err := json.Unmarshal(excluded, &prefs.ExcludedWordTypes); err != nil {
		return nil, fmt.Errorf("failed to decode excluded word types: %w", err)
	}
	if len(prefs.IncludedWordTypes) == 0 {
		prefs.IncludedWordTypes = nil
	}
	if len(prefs.ExcludedWordTypes) == 0 {
		prefs.ExcludedWordTypes = nil
	}

	return &prefs, nil
}

// Upsert implements store.PreferencesStore.Upsert
func (s *PostgresPreferencesStore) Upsert(ctx context.Context, prefs *domain.ReviewPreferences) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := prefs.Validate(); err != nil {
		log.Warn("preferences validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", prefs.UserID.String()))
		return err
	}

	included, err := marshalJSON(prefs.IncludedWordTypes, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode included word types: %w", err)
	}
	excluded, err := marshalJSON(prefs.ExcludedWordTypes, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode excluded word types: %w", err)
	}

	query := `
		INSERT INTO review_preferences (
			user_id, daily_review_limit, daily_new_card_limit, session_goal,
			maximum_interval_days, default_review_mode,
			included_word_types, excluded_word_types, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			daily_review_limit = EXCLUDED.daily_review_limit,
			daily_new_card_limit = EXCLUDED.daily_new_card_limit,
			session_goal = EXCLUDED.session_goal,
			maximum_interval_days = EXCLUDED.maximum_interval_days,
			default_review_mode = EXCLUDED.default_review_mode,
			included_word_types = EXCLUDED.included_word_types,
			excluded_word_types = EXCLUDED.excluded_word_types,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		prefs.UserID,
		prefs.DailyReviewLimit,
		prefs.DailyNewCardLimit,
		prefs.SessionGoal,
		prefs.MaximumIntervalDays,
		prefs.DefaultReviewMode,
		included,
		excluded,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert review preferences",
			slog.String("error", err.Error()),
			slog.String("user_id", prefs.UserID.String()))
		return MapError(err)
	}

	log.Debug("review preferences saved", slog.String("user_id", prefs.UserID.String()))
	return nil
}
