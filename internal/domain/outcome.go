package domain

import (
	"fmt"
	"strings"
)

// ReviewOutcome represents the result of a card review
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// ErrInvalidReviewOutcome is returned when a review outcome is not one of the
// four known values.
var ErrInvalidReviewOutcome = fmt.Errorf("%w: review outcome", ErrInvalidInput)

// ParseReviewOutcome converts a string into a ReviewOutcome, ignoring case.
func ParseReviewOutcome(s string) (ReviewOutcome, error) {
	o := ReviewOutcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReviewOutcome, s)
	}
	return o, nil
}

// Valid reports whether o is one of the known outcomes.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// IsLapse reports whether the outcome is a failed recall.
func (o ReviewOutcome) IsLapse() bool {
	return o == ReviewOutcomeAgain
}

// String implements fmt.Stringer.
func (o ReviewOutcome) String() string {
	return string(o)
}
