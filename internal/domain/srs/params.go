package srs

import (
	"github.com/phrazzld/vocab-api/internal/domain"
)

// CeilingIntervalDays is the longest interval the recurrence produces. It keeps
// due dates representable as time.Time and as PostgreSQL timestamps however
// long an EASY streak runs.
const CeilingIntervalDays = 36500

// Params defines all configurable parameters for the scheduling recurrence
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Ease factor adjustment applied for each review outcome
	EaseFactorAdjustment map[domain.ReviewOutcome]float64

	// Interval growth
	FirstInterval       int     // Interval after the first successful review
	SecondInterval      int     // Interval after a success on a one-day interval
	EasyBonus           float64 // Extra multiplier for an EASY success
	LapseIntervalFactor float64 // Share of the interval kept after a lapse
	MaxIntervalDays     int     // Upper bound on any interval, at most CeilingIntervalDays
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor float64

	AgainEaseFactorAdjustment float64
	HardEaseFactorAdjustment  float64
	GoodEaseFactorAdjustment  float64
	EasyEaseFactorAdjustment  float64

	FirstInterval       int
	SecondInterval      int
	EasyBonus           float64
	LapseIntervalFactor float64
	MaxIntervalDays     int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,

		EaseFactorAdjustment: map[domain.ReviewOutcome]float64{
			domain.ReviewOutcomeAgain: -0.20,
			domain.ReviewOutcomeHard:  -0.15,
			domain.ReviewOutcomeGood:  0.0,
			domain.ReviewOutcomeEasy:  0.15,
		},

		FirstInterval:       1,
		SecondInterval:      6,
		EasyBonus:           1.3,
		LapseIntervalFactor: 0.2,
		MaxIntervalDays:     CeilingIntervalDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// The floor can be raised but never lowered below the card invariant.
	if config.MinEaseFactor > params.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}

	if config.AgainEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeAgain] = config.AgainEaseFactorAdjustment
	}
	if config.HardEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeHard] = config.HardEaseFactorAdjustment
	}
	if config.GoodEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeGood] = config.GoodEaseFactorAdjustment
	}
	if config.EasyEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeEasy] = config.EasyEaseFactorAdjustment
	}

	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.EasyBonus > 0 {
		params.EasyBonus = config.EasyBonus
	}
	if config.LapseIntervalFactor > 0 {
		params.LapseIntervalFactor = config.LapseIntervalFactor
	}
	if config.MaxIntervalDays > 0 && config.MaxIntervalDays < CeilingIntervalDays {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	return params
}
