// Package selection builds review queues from a user's card pool.
//
// A Selector filters the pool by review mode and by list and word type filters,
// orders it, bands due cards ahead of new ones and truncates the result to the
// requested limit. Selection is pure: the pool is never modified and the
// returned queue holds copies.
package selection

import (
	"fmt"
	"strings"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// Mode names a strategy for choosing which cards enter a review queue.
type Mode string

// Supported review modes.
const (
	ModeDueCards       Mode = "due_cards"
	ModeDifficultCards Mode = "difficult_cards"
	ModeNewCards       Mode = "new_cards"
	ModeRandomReview   Mode = "random_review"
	ModeAllCards       Mode = "all_cards"
	ModeTargetedReview Mode = "targeted_review"
)

// ErrInvalidMode is returned for an unknown review mode.
var ErrInvalidMode = fmt.Errorf("%w: review mode", domain.ErrInvalidInput)

// Modes returns every supported mode in display order.
func Modes() []Mode {
	return []Mode{
		ModeDueCards,
		ModeDifficultCards,
		ModeNewCards,
		ModeRandomReview,
		ModeAllCards,
		ModeTargetedReview,
	}
}

// ParseMode converts a string into a Mode, ignoring case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDueCards, ModeDifficultCards, ModeNewCards,
		ModeRandomReview, ModeAllCards, ModeTargetedReview:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// bands reports whether the mode can mix reviewed and new cards and therefore
// goes through due-before-new banding.
func (m Mode) bands() bool {
	return m == ModeDueCards || m == ModeAllCards || m == ModeRandomReview
}
