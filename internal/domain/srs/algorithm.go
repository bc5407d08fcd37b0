package srs

import (
	"math"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor based on the review outcome.
//
// The ease factor represents how fast the interval grows after each success. Higher
// values mean the word is easier for the user. The adjustment for the outcome is
// taken from params and the result is rounded to two decimals, so repeated steps
// never accumulate floating point drift.
//
// Algorithm behavior:
//   - "Again" outcomes decrease the ease factor (typically -0.20)
//   - "Hard" outcomes decrease the ease factor (typically -0.15)
//   - "Good" outcomes leave the ease factor unchanged
//   - "Easy" outcomes increase the ease factor (typically +0.15)
//   - The result never drops below params.MinEaseFactor. There is no upper bound.
func calculateNewEaseFactor(
	currentEF float64,
	outcome domain.ReviewOutcome,
	params *Params,
) float64 {
	newEF := roundEase(currentEF + params.EaseFactorAdjustment[outcome])

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days.
//
// Parameters:
//   - currentInterval: The interval before this review
//   - easeFactor: The ease factor after this review has been applied
//   - outcome: The user's review outcome
//   - params: Configuration parameters for the recurrence
//
// Algorithm behavior:
//   - "Again" on a card that was never scheduled keeps the interval at 0
//   - "Again" otherwise keeps a fraction of the interval, at least one day
//   - First success (interval 0) schedules params.FirstInterval
//   - Success on a one-day interval schedules params.SecondInterval
//   - Later successes multiply the interval by the ease factor, and "Easy"
//     applies params.EasyBonus on top
//   - No interval exceeds params.MaxIntervalDays (at most CeilingIntervalDays)
//
// Intervals are rounded half away from zero.
func calculateNewInterval(
	currentInterval int,
	easeFactor float64,
	outcome domain.ReviewOutcome,
	params *Params,
) int {
	if outcome.IsLapse() {
		if currentInterval == 0 {
			return 0
		}
		return max(1, int(math.Round(float64(currentInterval)*params.LapseIntervalFactor)))
	}

	limit := intervalCeiling(params)

	switch currentInterval {
	case 0:
		return min(params.FirstInterval, limit)
	case 1:
		return min(params.SecondInterval, limit)
	}

	next := float64(currentInterval) * easeFactor
	if outcome == domain.ReviewOutcomeEasy {
		next *= params.EasyBonus
	}

	// Saturate before converting so a long streak never overflows int.
	if next >= float64(limit) {
		return limit
	}
	return int(math.Round(next))
}

// intervalCeiling returns params.MaxIntervalDays bounded by CeilingIntervalDays.
func intervalCeiling(params *Params) int {
	if params.MaxIntervalDays <= 0 || params.MaxIntervalDays > CeilingIntervalDays {
		return CeilingIntervalDays
	}
	return params.MaxIntervalDays
}

// calculateNextReviewDate converts an interval into the next due date.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState creates a new CardState with updated values based on the review outcome.
//
// The input card is never modified. The returned value is a copy with every
// recurrence field, counter and statistic advanced by exactly one review.
//
// Algorithm behavior:
//   - Ease factor and interval are recomputed from the outcome
//   - A success increments ConsecutiveCorrect and clears ConsecutiveIncorrect,
//     a lapse does the opposite
//   - Total, correct and per-outcome counters are incremented
//   - Response time is folded into the running average and total study time
func calculateNextState(
	card *domain.CardState,
	outcome domain.ReviewOutcome,
	responseTimeMs int64,
	now time.Time,
	params *Params,
) *domain.CardState {
	next := card.Clone()

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, outcome, params)
	next.IntervalDays = calculateNewInterval(card.IntervalDays, next.EaseFactor, outcome, params)
	next.DueDate = calculateNextReviewDate(next.IntervalDays, now)

	if outcome.IsLapse() {
		next.ConsecutiveCorrect = 0
		next.ConsecutiveIncorrect++
	} else {
		next.ConsecutiveIncorrect = 0
		next.ConsecutiveCorrect++
		next.CorrectReviews++
	}

	switch outcome {
	case domain.ReviewOutcomeAgain:
		next.ReviewCountAgain++
	case domain.ReviewOutcomeHard:
		next.ReviewCountHard++
	case domain.ReviewOutcomeGood:
		next.ReviewCountGood++
	case domain.ReviewOutcomeEasy:
		next.ReviewCountEasy++
	}

	next.TotalReviews++
	next.AverageResponseTime += (float64(responseTimeMs) - card.AverageResponseTime) /
		float64(next.TotalReviews)
	next.TotalStudyTime += responseTimeMs

	next.LastReviewOutcome = outcome
	next.LastReviewedAt = now
	next.UpdatedAt = now

	return next
}

// roundEase rounds an ease factor to two decimal places.
func roundEase(ef float64) float64 {
	return math.Round(ef*100) / 100
}
