package session

import "time"

// Statistics summarizes a session's progress.
type Statistics struct {
	Status                Status        `json:"status"`
	TotalCards            int           `json:"total_cards"`
	CompletedCards        int           `json:"completed_cards"`
	CorrectAnswers        int           `json:"correct_answers"`
	SkippedCards          int           `json:"skipped_cards"`
	RemainingCards        int           `json:"remaining_cards"`
	Accuracy              float64       `json:"accuracy"`            // Correct share of submitted reviews, 0..1
	ProgressPercentage    float64       `json:"progress_percentage"` // Reviewed or skipped share of all entries, 0..100
	AverageResponseTimeMs float64       `json:"average_response_time_ms"`
	ActiveDuration        time.Duration `json:"active_duration"`
	CardsPerMinute        float64       `json:"cards_per_minute"`
}

// Statistics computes the session statistics at now. Paused spans are excluded
// from the active time; a running active span counts up to now.
func (s *Session) Statistics(now time.Time) Statistics {
	stats := Statistics{
		Status:         s.Status,
		TotalCards:     len(s.Cards),
		CompletedCards: s.CompletedCards,
		CorrectAnswers: s.CorrectAnswers,
		SkippedCards:   s.SkippedCards,
		RemainingCards: s.Remaining(),
		ActiveDuration: s.activeDuration(now),
	}

	if s.CompletedCards > 0 {
		stats.Accuracy = float64(s.CorrectAnswers) / float64(s.CompletedCards)
		stats.AverageResponseTimeMs = float64(s.TotalResponseTimeMs) / float64(s.CompletedCards)
	}
	if stats.TotalCards > 0 {
		done := stats.TotalCards - stats.RemainingCards
		stats.ProgressPercentage = float64(done) / float64(stats.TotalCards) * 100
	}
	if minutes := stats.ActiveDuration.Minutes(); minutes > 0 {
		stats.CardsPerMinute = float64(s.CompletedCards) / minutes
	}

	return stats
}

func (s *Session) activeDuration(now time.Time) time.Duration {
	d := s.ActiveDuration
	if s.Status == StatusActive && s.ActiveSince != nil && now.After(*s.ActiveSince) {
		d += now.Sub(*s.ActiveSince)
	}
	return d
}
