package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Default review preference values.
const (
	DefaultDailyReviewLimit    = 50
	DefaultDailyNewCardLimit   = 10
	DefaultSessionGoal         = 20
	DefaultMaximumIntervalDays = 365
)

// ErrInvalidPreferences is returned when review preferences fail validation.
var ErrInvalidPreferences = fmt.Errorf("%w: review preferences", ErrInvalidInput)

// ReviewPreferences holds a user's review settings. The engine never reads
// them directly; the review service turns them into selection policies and an
// interval cap.
type ReviewPreferences struct {
	UserID              uuid.UUID  `json:"user_id"`
	DailyReviewLimit    int        `json:"daily_review_limit"`
	DailyNewCardLimit   int        `json:"daily_new_card_limit"`
	SessionGoal         int        `json:"session_goal"`
	MaximumIntervalDays int        `json:"maximum_interval_days"` // 0 means no cap
	DefaultReviewMode   string     `json:"default_review_mode"`
	IncludedWordTypes   []WordType `json:"included_word_types,omitempty"`
	ExcludedWordTypes   []WordType `json:"excluded_word_types,omitempty"`
}

// DefaultReviewPreferences returns the preferences used when a user has not
// saved any.
func DefaultReviewPreferences(userID uuid.UUID) *ReviewPreferences {
	return &ReviewPreferences{
		UserID:              userID,
		DailyReviewLimit:    DefaultDailyReviewLimit,
		DailyNewCardLimit:   DefaultDailyNewCardLimit,
		SessionGoal:         DefaultSessionGoal,
		MaximumIntervalDays: DefaultMaximumIntervalDays,
		DefaultReviewMode:   "due_cards",
	}
}

// Validate checks the preferences for consistency.
func (p *ReviewPreferences) Validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidPreferences)
	}
	if p.DailyReviewLimit < 0 || p.DailyNewCardLimit < 0 || p.SessionGoal < 0 {
		return fmt.Errorf("%w: limits cannot be negative", ErrInvalidPreferences)
	}
	if p.MaximumIntervalDays < 0 {
		return fmt.Errorf("%w: maximum interval cannot be negative", ErrInvalidPreferences)
	}
	for _, wt := range slices.Concat(p.IncludedWordTypes, p.ExcludedWordTypes) {
		if !wt.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidWordType, wt)
		}
	}
	return nil
}
