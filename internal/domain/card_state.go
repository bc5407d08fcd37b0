package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	// InitialEaseFactor is the ease factor of a card that has never been reviewed.
	InitialEaseFactor = 2.5

	// MinEaseFactor is the floor the ease factor can never drop below.
	MinEaseFactor = 1.3
)

// CardState validation errors
var (
	ErrCardStateIDEmpty         = fmt.Errorf("%w: card state ID cannot be empty", ErrInvalidInput)
	ErrCardStateUserIDEmpty     = fmt.Errorf("%w: card state user ID cannot be empty", ErrInvalidInput)
	ErrCardStateWordIDEmpty     = fmt.Errorf("%w: card state word ID cannot be empty", ErrInvalidInput)
	ErrInvalidEaseFactor        = fmt.Errorf("%w: ease factor must be at least %.1f", ErrInvalidInput, MinEaseFactor)
	ErrInvalidInterval          = fmt.Errorf("%w: interval must be greater than or equal to 0", ErrInvalidInput)
	ErrInvalidReviewCounters    = fmt.Errorf("%w: correct reviews cannot exceed total reviews", ErrInvalidInput)
	ErrNegativeCounter          = fmt.Errorf("%w: review counters cannot be negative", ErrInvalidInput)
	ErrConflictingStreaks       = fmt.Errorf("%w: consecutive correct and incorrect cannot both be non-zero", ErrInvalidInput)
	ErrInvalidLastReviewOutcome = fmt.Errorf("%w: last review outcome", ErrInvalidInput)
)

// CardState is a user's memory-state record for one word. It is created when a
// word enters the user's active study set and is only ever changed by the
// scheduler (recurrence fields) or by explicit suspend/archive operations.
type CardState struct {
	ID       uuid.UUID   `json:"id"`
	UserID   uuid.UUID   `json:"user_id"`
	WordID   uuid.UUID   `json:"word_id"`
	WordType WordType    `json:"word_type,omitempty"`
	ListIDs  []uuid.UUID `json:"list_ids,omitempty"` // Word lists the word belongs to

	EaseFactor   float64   `json:"ease_factor"`   // Interval growth multiplier, >= 1.3
	IntervalDays int       `json:"interval_days"` // Days until next due date
	DueDate      time.Time `json:"due_date"`

	ConsecutiveCorrect   int `json:"consecutive_correct"`
	ConsecutiveIncorrect int `json:"consecutive_incorrect"`
	TotalReviews         int `json:"total_reviews"`
	CorrectReviews       int `json:"correct_reviews"`

	AverageResponseTime float64 `json:"average_response_time"` // Running mean in milliseconds
	TotalStudyTime      int64   `json:"total_study_time"`      // Sum of response times in milliseconds

	IsActive    bool `json:"is_active"`
	IsSuspended bool `json:"is_suspended"`

	LastReviewOutcome ReviewOutcome `json:"last_review_outcome,omitempty"`
	LastReviewedAt    time.Time     `json:"last_reviewed_at"`

	ReviewCountAgain int `json:"review_count_again"`
	ReviewCountHard  int `json:"review_count_hard"`
	ReviewCountGood  int `json:"review_count_good"`
	ReviewCountEasy  int `json:"review_count_easy"`

	// Version is incremented by the store on every successful update and is
	// used for optimistic concurrency control.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCardState creates the memory state for a word entering a user's study set.
// The card is due immediately with the initial ease factor and a zero interval.
func NewCardState(
	userID, wordID uuid.UUID,
	wordType WordType,
	listIDs []uuid.UUID,
	now time.Time,
) (*CardState, error) {
	card := &CardState{
		ID:         uuid.New(),
		UserID:     userID,
		WordID:     wordID,
		WordType:   wordType,
		ListIDs:    slices.Clone(listIDs),
		EaseFactor: InitialEaseFactor,
		DueDate:    now,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks the CardState invariants.
func (c *CardState) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardStateIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardStateUserIDEmpty
	}

	if c.WordID == uuid.Nil {
		return ErrCardStateWordIDEmpty
	}

	if c.WordType != "" && !c.WordType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidWordType, c.WordType)
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if c.TotalReviews < 0 || c.CorrectReviews < 0 ||
		c.ConsecutiveCorrect < 0 || c.ConsecutiveIncorrect < 0 ||
		c.ReviewCountAgain < 0 || c.ReviewCountHard < 0 ||
		c.ReviewCountGood < 0 || c.ReviewCountEasy < 0 {
		return ErrNegativeCounter
	}

	if c.CorrectReviews > c.TotalReviews {
		return ErrInvalidReviewCounters
	}

	if c.ConsecutiveCorrect > 0 && c.ConsecutiveIncorrect > 0 {
		return ErrConflictingStreaks
	}

	if c.LastReviewOutcome != "" && !c.LastReviewOutcome.Valid() {
		return ErrInvalidLastReviewOutcome
	}

	return nil
}

// IsNew reports whether the card has never been reviewed.
func (c *CardState) IsNew() bool {
	return c.TotalReviews == 0
}

// IsDue reports whether the card is due at the given time.
func (c *CardState) IsDue(now time.Time) bool {
	return !c.DueDate.After(now)
}

// IsSelectable reports whether the card may be picked for review.
func (c *CardState) IsSelectable() bool {
	return c.IsActive && !c.IsSuspended
}

// InList reports whether the card's word belongs to the given list.
func (c *CardState) InList(listID uuid.UUID) bool {
	return slices.Contains(c.ListIDs, listID)
}

// Accuracy returns the share of correct reviews in [0, 1].
func (c *CardState) Accuracy() float64 {
	if c.TotalReviews == 0 {
		return 0
	}
	return float64(c.CorrectReviews) / float64(c.TotalReviews)
}

// Clone returns a deep copy of the card state.
func (c *CardState) Clone() *CardState {
	if c == nil {
		return nil
	}
	clone := *c
	clone.ListIDs = slices.Clone(c.ListIDs)
	return &clone
}
