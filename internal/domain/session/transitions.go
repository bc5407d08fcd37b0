package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// Submission is a user's answer for the current card.
type Submission struct {
	CardID         uuid.UUID
	Outcome        domain.ReviewOutcome
	ResponseTimeMs int64
	UserAnswer     string
	HintUsed       bool
	Confidence     int // 0 when not given, otherwise 1 to 5
}

// Result describes an accepted submission.
type Result struct {
	Entry     *Card             // The entry that was reviewed
	Updated   *domain.CardState // Card state to persist
	Requeued  bool              // A repeat of the card was appended
	Completed bool              // The submission completed the session
}

// SubmitReview records a review of the current card. current is the latest
// persisted state of that card; nil means the entry's snapshot is used.
//
// All validation and the schedule calculation happen before the session is
// touched, so a rejected submission leaves it unchanged.
func (s *Session) SubmitReview(
	sub Submission,
	current *domain.CardState,
	scheduler Scheduler,
	now time.Time,
) (*Result, error) {
	entry, err := s.currentFor(sub.CardID)
	if err != nil {
		return nil, err
	}

	if scheduler == nil {
		return nil, ErrNilScheduler
	}
	if !sub.Outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReviewOutcome, sub.Outcome)
	}
	if sub.ResponseTimeMs < MinResponseTimeMs || sub.ResponseTimeMs > MaxResponseTimeMs {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResponseTime, sub.ResponseTimeMs)
	}
	if sub.Confidence < 0 || sub.Confidence > MaxConfidence {
		return nil, ErrInvalidConfidence
	}

	base := current
	if base == nil {
		base = entry.Snapshot
	}
	if base == nil || base.ID != entry.CardID {
		return nil, ErrCardMismatch
	}

	updated, err := scheduler.CalculateNextReview(base, sub.Outcome, sub.ResponseTimeMs, now)
	if err != nil {
		return nil, err
	}

	reviewedAt := now
	entry.Outcome = sub.Outcome
	entry.ResponseTimeMs = sub.ResponseTimeMs
	entry.EaseFactorBefore = base.EaseFactor
	entry.EaseFactorAfter = updated.EaseFactor
	entry.IntervalBefore = base.IntervalDays
	entry.IntervalAfter = updated.IntervalDays
	entry.UserAnswer = sub.UserAnswer
	entry.HintUsed = sub.HintUsed
	entry.Confidence = sub.Confidence
	entry.ReviewedAt = &reviewedAt

	s.CompletedCards++
	if !sub.Outcome.IsLapse() {
		s.CorrectAnswers++
	}
	s.TotalResponseTimeMs += sub.ResponseTimeMs
	s.CurrentIndex++
	s.UpdatedAt = now

	result := &Result{Entry: entry, Updated: updated}

	if s.Options.RepeatIncorrect && sub.Outcome.IsLapse() && !s.requeued(entry.CardID) {
		entry.Requeued = true
		s.Cards = append(s.Cards, &Card{
			CardID:   entry.CardID,
			WordID:   entry.WordID,
			Position: len(s.Cards),
			Snapshot: updated.Clone(),
			IsRepeat: true,
		})
		result.Requeued = true
	}

	if s.CurrentIndex >= len(s.Cards) {
		s.finish(StatusCompleted, now)
		result.Completed = true
	}

	return result, nil
}

// Skip moves past the current card without reviewing it. It reports whether
// the skip completed the session.
func (s *Session) Skip(cardID uuid.UUID, now time.Time) (bool, error) {
	entry, err := s.currentFor(cardID)
	if err != nil {
		return false, err
	}

	entry.Skipped = true
	s.SkippedCards++
	s.CurrentIndex++
	s.UpdatedAt = now

	if s.CurrentIndex >= len(s.Cards) {
		s.finish(StatusCompleted, now)
		return true, nil
	}
	return false, nil
}

// Pause suspends an active session. Paused time does not count as active time.
func (s *Session) Pause(now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrSessionClosed
	}
	if s.Status != StatusActive {
		return fmt.Errorf("%w: cannot pause a %s session", domain.ErrInvalidTransition, s.Status)
	}

	s.bankActiveTime(now)
	pausedAt := now
	s.PausedAt = &pausedAt
	s.Status = StatusPaused
	s.UpdatedAt = now
	return nil
}

// Resume reactivates a paused session.
func (s *Session) Resume(now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrSessionClosed
	}
	if s.Status != StatusPaused {
		return fmt.Errorf("%w: cannot resume a %s session", domain.ErrInvalidTransition, s.Status)
	}

	resumedAt, activeSince := now, now
	s.ResumedAt = &resumedAt
	s.ActiveSince = &activeSince
	s.Status = StatusActive
	s.UpdatedAt = now
	return nil
}

// Cancel abandons the session. Reviews already submitted stay recorded.
func (s *Session) Cancel(now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrSessionClosed
	}
	s.finish(StatusCancelled, now)
	return nil
}

// Complete ends the session early. Entries not yet reached stay unreviewed.
func (s *Session) Complete(now time.Time) error {
	if s.Status.Terminal() {
		return domain.ErrSessionClosed
	}
	s.finish(StatusCompleted, now)
	return nil
}

// currentFor returns the current entry if the session accepts input and the
// entry is for cardID.
func (s *Session) currentFor(cardID uuid.UUID) (*Card, error) {
	if s.Status.Terminal() {
		return nil, domain.ErrSessionClosed
	}
	if s.Status != StatusActive {
		return nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidTransition, s.Status)
	}

	entry := s.CurrentCard()
	if entry == nil || entry.CardID != cardID {
		return nil, fmt.Errorf("%w: card %s at position %d", domain.ErrOutOfSequence, cardID, s.CurrentIndex)
	}
	return entry, nil
}

func (s *Session) requeued(cardID uuid.UUID) bool {
	for _, c := range s.Cards {
		if c.CardID == cardID && (c.Requeued || c.IsRepeat) {
			return true
		}
	}
	return false
}

func (s *Session) finish(status Status, now time.Time) {
	s.bankActiveTime(now)
	endTime := now
	s.EndTime = &endTime
	s.Status = status
	s.UpdatedAt = now
}

func (s *Session) bankActiveTime(now time.Time) {
	if s.ActiveSince == nil {
		return
	}
	if d := now.Sub(*s.ActiveSince); d > 0 {
		s.ActiveDuration += d
	}
	s.ActiveSince = nil
}
