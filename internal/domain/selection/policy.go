package selection

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// Selection limits.
const (
	MinLimit = 1
	MaxLimit = 100

	// DefaultDifficultyThreshold is the ease factor below which a card counts
	// as difficult when the policy does not set one.
	DefaultDifficultyThreshold = 2.0
)

// Policy validation errors.
var (
	ErrInvalidLimit     = fmt.Errorf("%w: limit must be between %d and %d", domain.ErrInvalidInput, MinLimit, MaxLimit)
	ErrInvalidMaxNew    = fmt.Errorf("%w: max new cards cannot be negative", domain.ErrInvalidInput)
	ErrInvalidThreshold = fmt.Errorf("%w: difficulty threshold cannot be negative", domain.ErrInvalidInput)
	ErrMissingTargets   = fmt.Errorf("%w: targeted review requires target card IDs", domain.ErrInvalidInput)
)

// Policy describes how a review queue is built.
type Policy struct {
	Mode  Mode
	Limit int

	IncludeListIDs   []uuid.UUID
	ExcludeListIDs   []uuid.UUID
	IncludeWordTypes []domain.WordType
	ExcludeWordTypes []domain.WordType

	// TargetCardIDs lists the cards of a targeted review, in queue order.
	TargetCardIDs []uuid.UUID

	PrioritizeDueCards bool
	ShuffleCards       bool

	// MaxNewCards caps never-reviewed cards in the queue. Zero means no cap.
	MaxNewCards int

	// DifficultyThreshold is used by difficult_cards. Zero means the default.
	DifficultyThreshold float64
}

// Validate checks the policy.
func (p Policy) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	if p.Limit < MinLimit || p.Limit > MaxLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, p.Limit)
	}
	if p.MaxNewCards < 0 {
		return ErrInvalidMaxNew
	}
	if p.DifficultyThreshold < 0 {
		return ErrInvalidThreshold
	}
	if p.Mode == ModeTargetedReview && len(p.TargetCardIDs) == 0 {
		return ErrMissingTargets
	}
	for _, wt := range p.IncludeWordTypes {
		if !wt.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidWordType, wt)
		}
	}
	for _, wt := range p.ExcludeWordTypes {
		if !wt.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidWordType, wt)
		}
	}
	return nil
}

func (p Policy) threshold() float64 {
	if p.DifficultyThreshold == 0 {
		return DefaultDifficultyThreshold
	}
	return p.DifficultyThreshold
}
