package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// PreferencesStore defines the interface for review preference persistence.
type PreferencesStore interface {
	// Get returns the saved preferences of a user, or the defaults when none
	// have been saved.
	Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error)

	// Upsert saves the preferences, replacing any existing row.
	Upsert(ctx context.Context, prefs *domain.ReviewPreferences) error

	// WithTx returns a new PreferencesStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PreferencesStore
}
