package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain/session"
)

// SessionStore defines the interface for review session persistence.
// The session's card queue is stored together with the session.
type SessionStore interface {
	// Create saves a new session.
	Create(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// Update writes s back if its Version still matches the stored row, and
	// increments s.Version on success.
	// Returns ErrVersionConflict or ErrSessionNotFound.
	Update(ctx context.Context, s *session.Session) error

	// ListOpenByUser returns the user's active and paused sessions, newest first.
	ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error)

	// ListIdleBefore returns open sessions whose last activity is before cutoff.
	ListIdleBefore(ctx context.Context, cutoff time.Time, limit int) ([]*session.Session, error)

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}
