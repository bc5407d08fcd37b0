package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

const cardStateColumns = `
	id, user_id, word_id, word_type, list_ids,
	ease_factor, interval_days, due_date,
	consecutive_correct, consecutive_incorrect, total_reviews, correct_reviews,
	average_response_time, total_study_time,
	is_active, is_suspended, last_review_outcome, last_reviewed_at,
	review_count_again, review_count_hard, review_count_good, review_count_easy,
	version, created_at, updated_at`

// PostgresCardStateStore implements the store.CardStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStateStore creates a new PostgreSQL implementation of the CardStateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStateStore(db store.DBTX, logger *slog.Logger) *PostgresCardStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_state_store")),
	}
}

// Ensure PostgresCardStateStore implements store.CardStateStore interface
var _ store.CardStateStore = (*PostgresCardStateStore)(nil)

// WithTx implements store.CardStateStore.WithTx
func (s *PostgresCardStateStore) WithTx(tx *sql.Tx) store.CardStateStore {
	return &PostgresCardStateStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStateStore.Create
// Returns store.ErrCardStateExists if the user already has a card state for the word.
func (s *PostgresCardStateStore) Create(ctx context.Context, card *domain.CardState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	listIDs, err := marshalJSON(card.ListIDs, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode list ids: %w", err)
	}

	query := `
		INSERT INTO card_states (` + cardStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err = s.db.ExecContext(ctx, query,
		card.ID, card.UserID, card.WordID, string(card.WordType), listIDs,
		card.EaseFactor, card.IntervalDays, card.DueDate,
		card.ConsecutiveCorrect, card.ConsecutiveIncorrect, card.TotalReviews, card.CorrectReviews,
		card.AverageResponseTime, card.TotalStudyTime,
		card.IsActive, card.IsSuspended, string(card.LastReviewOutcome), nullTime(card.LastReviewedAt),
		card.ReviewCountAgain, card.ReviewCountHard, card.ReviewCountGood, card.ReviewCountEasy,
		card.Version, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create card state",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("user_id", card.UserID.String()))
		return MapUniqueViolation(err, store.ErrCardStateExists)
	}

	log.Debug("card state created",
		slog.String("card_id", card.ID.String()),
		slog.String("word_id", card.WordID.String()))
	return nil
}

// Get implements store.CardStateStore.Get
func (s *PostgresCardStateStore) Get(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.CardStateStore.GetForUpdate
// It locks the row until the surrounding transaction ends.
func (s *PostgresCardStateStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresCardStateStore) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardStateColumns + ` FROM card_states WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	card, err := scanCardState(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card state not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardStateNotFound
		}
		log.Error("failed to get card state",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()),
			slog.Bool("for_update", lock))
		return nil, MapError(err)
	}

	return card, nil
}

// ListByUser implements store.CardStateStore.ListByUser
// Returns an empty slice if the user has no card states.
func (s *PostgresCardStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardStateColumns + `
		FROM card_states
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query card states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.CardState{}
	for rows.Next() {
		card, err := scanCardState(rows)
		if err != nil {
			log.Error("failed to scan card state row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed card states",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// Update implements store.CardStateStore.Update
// The write only succeeds if card.Version matches the stored version.
func (s *PostgresCardStateStore) Update(ctx context.Context, card *domain.CardState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	listIDs, err := marshalJSON(card.ListIDs, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode list ids: %w", err)
	}

	query := `
		UPDATE card_states SET
			word_type = $3, list_ids = $4,
			ease_factor = $5, interval_days = $6, due_date = $7,
			consecutive_correct = $8, consecutive_incorrect = $9,
			total_reviews = $10, correct_reviews = $11,
			average_response_time = $12, total_study_time = $13,
			is_active = $14, is_suspended = $15,
			last_review_outcome = $16, last_reviewed_at = $17,
			review_count_again = $18, review_count_hard = $19,
			review_count_good = $20, review_count_easy = $21,
			updated_at = $22, version = version + 1
		WHERE id = $1 AND version = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		card.ID, card.Version,
		string(card.WordType), listIDs,
		card.EaseFactor, card.IntervalDays, card.DueDate,
		card.ConsecutiveCorrect, card.ConsecutiveIncorrect,
		card.TotalReviews, card.CorrectReviews,
		card.AverageResponseTime, card.TotalStudyTime,
		card.IsActive, card.IsSuspended,
		string(card.LastReviewOutcome), nullTime(card.LastReviewedAt),
		card.ReviewCountAgain, card.ReviewCountHard,
		card.ReviewCountGood, card.ReviewCountEasy,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update card state",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	err = checkVersionedUpdate(ctx, s.db, result,
		`SELECT EXISTS (SELECT 1 FROM card_states WHERE id = $1)`,
		card.ID, store.ErrCardStateNotFound)
	if err != nil {
		log.Debug("card state not updated",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.Int64("version", card.Version))
		return err
	}

	card.Version++
	log.Debug("card state updated",
		slog.String("card_id", card.ID.String()),
		slog.Int64("version", card.Version))
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCardState(row rowScanner) (*domain.CardState, error) {
	var (
		card           domain.CardState
		wordType       string
		listIDs        []byte
		lastOutcome    string
		lastReviewedAt sql.NullTime
	)

	err := row.Scan(
		&card.ID, &card.UserID, &card.WordID, &wordType, &listIDs,
		&card.EaseFactor, &card.IntervalDays, &card.DueDate,
		&card.ConsecutiveCorrect, &card.ConsecutiveIncorrect, &card.TotalReviews, &card.CorrectReviews,
		&card.AverageResponseTime, &card.TotalStudyTime,
		&card.IsActive, &card.IsSuspended, &lastOutcome, &lastReviewedAt,
		&card.ReviewCountAgain, &card.ReviewCountHard, &card.ReviewCountGood, &card.ReviewCountEasy,
		&card.Version, &card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.WordType = domain.WordType(wordType)
	card.LastReviewOutcome = domain.ReviewOutcome(lastOutcome)
	if lastReviewedAt.Valid {
		card.LastReviewedAt = lastReviewedAt.Time
	}
	if len(listIDs) > 0 {
		if err := json.Unmarshal(listIDs, &card.ListIDs); err != nil {
			return nil, fmt.Errorf("failed to decode list ids: %w", err)
		}
	}
	if len(card.ListIDs) == 0 {
		card.ListIDs = nil
	}

	return &card, nil
}
