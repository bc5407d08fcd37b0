package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// CardStateStore defines the interface for card state persistence.
type CardStateStore interface {
	// Create saves a new card state.
	// Returns ErrCardStateExists if the user already has a card state for the word.
	Create(ctx context.Context, card *domain.CardState) error

	// Get retrieves a card state by ID.
	// Returns ErrCardStateNotFound if the card state does not exist.
	// NOTE: This method does NOT lock the row.
	Get(ctx context.Context, id uuid.UUID) (*domain.CardState, error)

	// GetForUpdate retrieves a card state with a row-level lock using SELECT FOR UPDATE.
	// This must be used within a transaction.
	// Returns ErrCardStateNotFound if the card state does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CardState, error)

	// ListByUser returns every card state of a user, active or not.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error)

	// Update writes card back if its Version still matches the stored row, and
	// increments card.Version on success.
	// Returns ErrVersionConflict if the row was changed since it was read and
	// ErrCardStateNotFound if it does not exist.
	Update(ctx context.Context, card *domain.CardState) error

	// WithTx returns a new CardStateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStateStore
}
