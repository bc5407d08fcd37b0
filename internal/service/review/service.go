// Package review orchestrates the review engine: it loads card states and
// sessions from the stores, runs the scheduler, selector and session state
// machine, and writes the results back inside one transaction.
//
// Operations on a session are serialized per session in-process. Writes are
// version checked, and a version conflict is retried with exponential backoff
// so that concurrent writers from other processes are detected rather than
// overwritten.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
)

// EnrollRequest adds a word to a user's study set.
type EnrollRequest struct {
	WordID   uuid.UUID
	WordType domain.WordType
	ListIDs  []uuid.UUID
}

// StartSessionRequest describes the session to start. Zero values in the
// policy are filled from the user's preferences.
type StartSessionRequest struct {
	Policy          selection.Policy
	RepeatIncorrect bool
}

// SubmitResult is the outcome of a submitted review.
type SubmitResult struct {
	Session   *session.Session
	Entry     *session.Card
	Card      *domain.CardState // Card state as persisted
	Requeued  bool
	Completed bool
}

// Service is the review service used by the HTTP layer and the sweeper.
type Service interface {
	// EnrollCard creates the card state for a word entering the user's study set.
	// Returns ErrCardExists if the user already studies the word.
	EnrollCard(ctx context.Context, userID uuid.UUID, req EnrollRequest) (*domain.CardState, error)

	// GetCard returns one of the user's card states.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error)

	// ListCards returns all of the user's card states.
	ListCards(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error)

	// PreviewQueue runs the selector without starting a session.
	PreviewQueue(ctx context.Context, userID uuid.UUID, policy selection.Policy) ([]*domain.CardState, error)

	// AvailableModes lists the modes that would produce a non-empty queue.
	AvailableModes(ctx context.Context, userID uuid.UUID) ([]selection.Mode, error)

	SuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error)
	UnsuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error)
	ResetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error)
	PostponeCard(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.CardState, error)

	GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *domain.ReviewPreferences) error

	// StartSession selects a queue and starts a session over it.
	// Returns ErrSessionInProgress if the user already has an open session and
	// domain.ErrEmptyQueue if no card matches the policy.
	StartSession(ctx context.Context, userID uuid.UUID, req StartSessionRequest) (*session.Session, error)

	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)

	// SubmitReview records the review of the session's current card and
	// persists the rescheduled card state.
	SubmitReview(ctx context.Context, userID, sessionID uuid.UUID, sub session.Submission) (*SubmitResult, error)

	SkipCard(ctx context.Context, userID, sessionID, cardID uuid.UUID) (*session.Session, error)
	PauseSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)
	ResumeSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)
	CancelSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)

	SessionStatistics(ctx context.Context, userID, sessionID uuid.UUID) (*session.Statistics, error)

	// ExpireIdleSessions cancels open sessions without activity for idle and
	// returns how many were cancelled.
	ExpireIdleSessions(ctx context.Context, idle time.Duration) (int, error)
}
