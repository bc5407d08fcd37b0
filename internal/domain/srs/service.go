package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// Common errors
var (
	ErrNilCard             = fmt.Errorf("%w: card state cannot be nil", domain.ErrInvalidInput)
	ErrInvalidOutcome      = domain.ErrInvalidReviewOutcome
	ErrInvalidResponseTime = fmt.Errorf("%w: response time must be positive", domain.ErrInvalidInput)
	ErrInvalidDays         = fmt.Errorf("%w: postpone days must be at least 1", domain.ErrInvalidInput)
)

// Service defines the interface for scheduling operations on a CardState.
// Implementations are pure: they never modify their input and never read the clock.
type Service interface {
	// CalculateNextReview computes the card state after one review
	CalculateNextReview(
		card *domain.CardState,
		outcome domain.ReviewOutcome,
		responseTimeMs int64,
		now time.Time,
	) (*domain.CardState, error)

	// PostponeReview pushes the due date forward by a specified number of days,
	// counted from the later of now and the current due date
	PostponeReview(
		card *domain.CardState,
		days int,
		now time.Time,
	) (*domain.CardState, error)

	// ResetCard returns the card to the never-reviewed state
	ResetCard(card *domain.CardState, now time.Time) (*domain.CardState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface for calculating the next card state
func (s *defaultService) CalculateNextReview(
	card *domain.CardState,
	outcome domain.ReviewOutcome,
	responseTimeMs int64,
	now time.Time,
) (*domain.CardState, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	if responseTimeMs <= 0 {
		return nil, ErrInvalidResponseTime
	}

	return calculateNextState(card, outcome, responseTimeMs, now, s.params), nil
}

// PostponeReview implements the Service interface for postponing reviews
func (s *defaultService) PostponeReview(
	card *domain.CardState,
	days int,
	now time.Time,
) (*domain.CardState, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	// An overdue card is postponed from now, not from its stale due date.
	base := card.DueDate
	if now.After(base) {
		base = now
	}

	next := card.Clone()
	next.DueDate = base.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}

// ResetCard implements the Service interface. Identity, word metadata and the
// active/suspended flags are kept; everything the scheduler learned is discarded.
func (s *defaultService) ResetCard(card *domain.CardState, now time.Time) (*domain.CardState, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	return &domain.CardState{
		ID:          card.ID,
		UserID:      card.UserID,
		WordID:      card.WordID,
		WordType:    card.WordType,
		ListIDs:     card.Clone().ListIDs,
		EaseFactor:  domain.InitialEaseFactor,
		DueDate:     now,
		IsActive:    card.IsActive,
		IsSuspended: card.IsSuspended,
		Version:     card.Version,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   now,
	}, nil
}

// maxIntervalService caps the interval produced by another Service.
type maxIntervalService struct {
	Service
	maxDays int
}

// WithMaxInterval wraps svc so that no computed interval exceeds maxDays. The due
// date is moved back to match a clamped interval. A maxDays of zero or less
// returns svc unchanged.
func WithMaxInterval(svc Service, maxDays int) Service {
	if maxDays <= 0 {
		return svc
	}
	return &maxIntervalService{Service: svc, maxDays: maxDays}
}

// CalculateNextReview applies the wrapped service and clamps the interval.
func (s *maxIntervalService) CalculateNextReview(
	card *domain.CardState,
	outcome domain.ReviewOutcome,
	responseTimeMs int64,
	now time.Time,
) (*domain.CardState, error) {
	next, err := s.Service.CalculateNextReview(card, outcome, responseTimeMs, now)
	if err != nil {
		return nil, err
	}

	if next.IntervalDays > s.maxDays {
		next.IntervalDays = s.maxDays
		next.DueDate = calculateNextReviewDate(s.maxDays, now)
	}

	return next, nil
}
