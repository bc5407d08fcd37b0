// Package session implements the review session state machine.
//
// A Session walks a fixed queue of card snapshots one position at a time. Each
// submission runs the scheduler against the card's current state and records
// the before and after values on the session entry. The caller persists the
// updated card state and the session; this package performs no I/O and no
// locking, so a Session must not be shared between goroutines without external
// synchronization.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
)

// Status is the lifecycle state of a session.
type Status string

// Session states. Completed and cancelled are terminal.
const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further operation is allowed in this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Limits on submitted values.
const (
	MinResponseTimeMs = 100
	MaxResponseTimeMs = 300_000
	MaxConfidence     = 5
)

// Validation errors.
var (
	ErrInvalidResponseTime = fmt.Errorf(
		"%w: response time must be between %d and %d ms",
		domain.ErrInvalidInput, MinResponseTimeMs, MaxResponseTimeMs,
	)
	ErrInvalidConfidence = fmt.Errorf("%w: confidence must be between 0 and %d", domain.ErrInvalidInput, MaxConfidence)
	ErrNilScheduler      = fmt.Errorf("%w: scheduler cannot be nil", domain.ErrInvalidInput)
	ErrCardMismatch      = fmt.Errorf("%w: card state does not belong to the current entry", domain.ErrInvalidInput)
	ErrUserIDEmpty       = fmt.Errorf("%w: session user ID cannot be empty", domain.ErrInvalidInput)
)

// Scheduler computes the next memory state of a card after a review.
type Scheduler interface {
	CalculateNextReview(
		card *domain.CardState,
		outcome domain.ReviewOutcome,
		responseTimeMs int64,
		now time.Time,
	) (*domain.CardState, error)
}

// Options are the per-session behavior flags.
type Options struct {
	RepeatIncorrect    bool `json:"repeat_incorrect"`
	ShuffleCards       bool `json:"shuffle_cards"`
	PrioritizeDueCards bool `json:"prioritize_due_cards"`
}

// Card is one position in a session queue.
type Card struct {
	CardID   uuid.UUID         `json:"card_id"`
	WordID   uuid.UUID         `json:"word_id"`
	Position int               `json:"position"`
	Snapshot *domain.CardState `json:"snapshot"` // Card state when the entry was queued

	Outcome          domain.ReviewOutcome `json:"outcome,omitempty"`
	ResponseTimeMs   int64                `json:"response_time_ms,omitempty"`
	EaseFactorBefore float64              `json:"ease_factor_before,omitempty"`
	EaseFactorAfter  float64              `json:"ease_factor_after,omitempty"`
	IntervalBefore   int                  `json:"interval_before,omitempty"`
	IntervalAfter    int                  `json:"interval_after,omitempty"`
	UserAnswer       string               `json:"user_answer,omitempty"`
	HintUsed         bool                 `json:"hint_used,omitempty"`
	Confidence       int                  `json:"confidence,omitempty"`
	ReviewedAt       *time.Time           `json:"reviewed_at,omitempty"`

	Skipped  bool `json:"skipped,omitempty"`
	Requeued bool `json:"requeued,omitempty"`  // A repeat of this entry was appended
	IsRepeat bool `json:"is_repeat,omitempty"` // This entry is the appended repeat
}

// Reviewed reports whether a review was submitted for the entry.
func (c *Card) Reviewed() bool {
	return c.ReviewedAt != nil
}

func (c *Card) clone() *Card {
	clone := *c
	clone.Snapshot = c.Snapshot.Clone()
	clone.ReviewedAt = clonePtr(c.ReviewedAt)
	return &clone
}

// Session is a review session over a fixed queue of cards.
type Session struct {
	ID      uuid.UUID      `json:"id"`
	UserID  uuid.UUID      `json:"user_id"`
	Mode    selection.Mode `json:"mode"`
	Options Options        `json:"options"`

	Cards        []*Card `json:"cards"`
	CurrentIndex int     `json:"current_index"`
	Status       Status  `json:"status"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	PausedAt  *time.Time `json:"paused_at,omitempty"`
	ResumedAt *time.Time `json:"resumed_at,omitempty"`

	CompletedCards      int   `json:"completed_cards"`
	CorrectAnswers      int   `json:"correct_answers"`
	SkippedCards        int   `json:"skipped_cards"`
	TotalResponseTimeMs int64 `json:"total_response_time_ms"`

	// ActiveDuration is the banked time spent active. The span that started at
	// ActiveSince is added when the session pauses or ends.
	ActiveDuration time.Duration `json:"active_duration"`
	ActiveSince    *time.Time    `json:"active_since,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an active session over queue. The queue entries are copied.
func New(
	userID uuid.UUID,
	mode selection.Mode,
	queue []*domain.CardState,
	opts Options,
	now time.Time,
) (*Session, error) {
	if userID == uuid.Nil {
		return nil, ErrUserIDEmpty
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", selection.ErrInvalidMode, mode)
	}
	if len(queue) == 0 {
		return nil, domain.ErrEmptyQueue
	}

	cards := make([]*Card, 0, len(queue))
	for _, c := range queue {
		if c == nil {
			return nil, fmt.Errorf("%w: queue contains a nil card", domain.ErrInvalidInput)
		}
		cards = append(cards, &Card{
			CardID:   c.ID,
			WordID:   c.WordID,
			Position: len(cards),
			Snapshot: c.Clone(),
		})
	}

	start := now
	return &Session{
		ID:          uuid.New(),
		UserID:      userID,
		Mode:        mode,
		Options:     opts,
		Cards:       cards,
		Status:      StatusActive,
		StartTime:   now,
		ActiveSince: &start,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CurrentCard returns the entry at the current position, or nil when the
// session is terminal or no entries remain.
func (s *Session) CurrentCard() *Card {
	if s.Status.Terminal() || s.CurrentIndex >= len(s.Cards) {
		return nil
	}
	return s.Cards[s.CurrentIndex]
}

// Remaining returns the number of entries not yet reviewed or skipped.
func (s *Session) Remaining() int {
	return max(0, len(s.Cards)-s.CurrentIndex)
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Cards = make([]*Card, len(s.Cards))
	for i, c := range s.Cards {
		clone.Cards[i] = c.clone()
	}
	clone.EndTime = clonePtr(s.EndTime)
	clone.PausedAt = clonePtr(s.PausedAt)
	clone.ResumedAt = clonePtr(s.ResumedAt)
	clone.ActiveSince = clonePtr(s.ActiveSince)
	return &clone
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
