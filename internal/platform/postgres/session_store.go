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
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

const sessionColumns = `
	id, user_id, mode, status, options, cards, current_index,
	start_time, end_time, paused_at, resumed_at,
	completed_cards, correct_answers, skipped_cards, total_response_time_ms,
	active_duration_ms, active_since,
	version, created_at, updated_at`

// PostgresSessionStore implements the store.SessionStore interface.
// The card queue is kept as a JSONB document on the session row.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.SessionStore.Create
// Returns store.ErrOpenSessionExists if the user already has an open session.
func (s *PostgresSessionStore) Create(ctx context.Context, sess *session.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	options, cards, err := encodeSession(sess)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO review_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = s.db.ExecContext(ctx, query,
		sess.ID, sess.UserID, string(sess.Mode), string(sess.Status), options, cards, sess.CurrentIndex,
		sess.StartTime, nullTimePtr(sess.EndTime), nullTimePtr(sess.PausedAt), nullTimePtr(sess.ResumedAt),
		sess.CompletedCards, sess.CorrectAnswers, sess.SkippedCards, sess.TotalResponseTimeMs,
		sess.ActiveDuration.Milliseconds(), nullTimePtr(sess.ActiveSince),
		sess.Version, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create review session",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.ID.String()),
			slog.String("user_id", sess.UserID.String()))
		return MapUniqueViolation(err, store.ErrOpenSessionExists)
	}

	log.Debug("review session created",
		slog.String("session_id", sess.ID.String()),
		slog.Int("cards", len(sess.Cards)))
	return nil
}

// Get implements store.SessionStore.Get
func (s *PostgresSessionStore) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + sessionColumns + ` FROM review_sessions WHERE id = $1`
	sess, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get review session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}
	return sess, nil
}

// Update implements store.SessionStore.Update
func (s *PostgresSessionStore) Update(ctx context.Context, sess *session.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	options, cards, err := encodeSession(sess)
	if err != nil {
		return err
	}

	query := `
		UPDATE review_sessions SET
			status = $3, options = $4, cards = $5, current_index = $6,
			end_time = $7, paused_at = $8, resumed_at = $9,
			completed_cards = $10, correct_answers = $11, skipped_cards = $12,
			total_response_time_ms = $13, active_duration_ms = $14, active_since = $15,
			updated_at = $16, version = version + 1
		WHERE id = $1 AND version = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.Version,
		string(sess.Status), options, cards, sess.CurrentIndex,
		nullTimePtr(sess.EndTime), nullTimePtr(sess.PausedAt), nullTimePtr(sess.ResumedAt),
		sess.CompletedCards, sess.CorrectAnswers, sess.SkippedCards,
		sess.TotalResponseTimeMs, sess.ActiveDuration.Milliseconds(), nullTimePtr(sess.ActiveSince),
		sess.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update review session",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.ID.String()))
		return MapError(err)
	}

	err = checkVersionedUpdate(ctx, s.db, result,
		`SELECT EXISTS (SELECT 1 FROM review_sessions WHERE id = $1)`,
		sess.ID, store.ErrSessionNotFound)
	if err != nil {
		log.Debug("review session not updated",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.ID.String()),
			slog.Int64("version", sess.Version))
		return err
	}

	sess.Version++
	log.Debug("review session updated",
		slog.String("session_id", sess.ID.String()),
		slog.String("status", string(sess.Status)),
		slog.Int("current_index", sess.CurrentIndex))
	return nil
}

// ListOpenByUser implements store.SessionStore.ListOpenByUser
func (s *PostgresSessionStore) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM review_sessions
		WHERE user_id = $1 AND status IN ('active', 'paused')
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, userID)
}

// ListIdleBefore implements store.SessionStore.ListIdleBefore
// A session's last activity is its updated_at timestamp.
func (s *PostgresSessionStore) ListIdleBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*session.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + sessionColumns + `
		FROM review_sessions
		WHERE status IN ('active', 'paused') AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2
	`
	return s.list(ctx, query, cutoff, limit)
}

func (s *PostgresSessionStore) list(ctx context.Context, query string, args ...any) ([]*session.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review sessions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sessions := []*session.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan review session row", slog.String("error", err.Error()))
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}
	return sessions, nil
}

func encodeSession(sess *session.Session) (options, cards string, err error) {
	options, err = marshalJSON(sess.Options, "{}")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode session options: %w", err)
	}
	cards, err = marshalJSON(sess.Cards, "[]")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode session cards: %w", err)
	}
	return options, cards, nil
}

func scanSession(row rowScanner) (*session.Session, error) {
	var (
		sess                                      session.Session
		mode, status                              string
		options, cards                            []byte
		endTime, pausedAt, resumedAt, activeSince sql.NullTime
		activeMs                                  int64
	)

	err := row.Scan(
		&sess.ID, &sess.UserID, &mode, &status, &options, &cards, &sess.CurrentIndex,
		&sess.StartTime, &endTime, &pausedAt, &resumedAt,
		&sess.CompletedCards, &sess.CorrectAnswers, &sess.SkippedCards, &sess.TotalResponseTimeMs,
		&activeMs, &activeSince,
		&sess.Version, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.Mode = selection.Mode(mode)
	sess.Status = session.Status(status)
	sess.EndTime = timePtr(endTime)
	sess.PausedAt = timePtr(pausedAt)
	sess.ResumedAt = timePtr(resumedAt)
	sess.ActiveSince = timePtr(activeSince)
	sess.ActiveDuration = time.Duration(activeMs) * time.Millisecond

	if err := json.Unmarshal(options, &sess.Options); err != nil {
		return nil, fmt.Errorf("failed to decode session options: %w", err)
	}
	if err := json.Unmarshal(cards, &sess.Cards); err != nil {
		return nil, fmt.Errorf("failed to decode session cards: %w", err)
	}

	return &sess, nil
}
