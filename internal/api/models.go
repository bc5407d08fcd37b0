package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/service/review"
)

// EnrollCardRequest is the payload of POST /api/cards.
type EnrollCardRequest struct {
	WordID   uuid.UUID   `json:"word_id"   validate:"required"`
	WordType string      `json:"word_type" validate:"omitempty,max=32"`
	ListIDs  []uuid.UUID `json:"list_ids"  validate:"omitempty,max=50"`
}

// PostponeCardRequest is the payload of POST /api/cards/{id}/postpone.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// PolicyRequest describes a selection policy. Unset fields take the user's
// preferences.
type PolicyRequest struct {
	Mode                string      `json:"mode"                 validate:"omitempty,oneof=due_cards difficult_cards new_cards random_review all_cards targeted_review"`
	Limit               int         `json:"limit"                validate:"omitempty,min=1,max=100"`
	IncludeListIDs      []uuid.UUID `json:"include_list_ids"`
	ExcludeListIDs      []uuid.UUID `json:"exclude_list_ids"`
	IncludeWordTypes    []string    `json:"include_word_types"`
	ExcludeWordTypes    []string    `json:"exclude_word_types"`
	TargetCardIDs       []uuid.UUID `json:"target_card_ids"      validate:"max=100"`
	PrioritizeDueCards  bool        `json:"prioritize_due_cards"`
	ShuffleCards        bool        `json:"shuffle_cards"`
	MaxNewCards         int         `json:"max_new_cards"        validate:"min=0"`
	DifficultyThreshold float64     `json:"difficulty_threshold" validate:"min=0"`
}

// StartSessionRequest is the payload of POST /api/sessions.
type StartSessionRequest struct {
	PolicyRequest
	RepeatIncorrect bool `json:"repeat_incorrect"`
}

// SubmitReviewRequest is the payload of POST /api/sessions/{id}/reviews.
type SubmitReviewRequest struct {
	CardID         uuid.UUID `json:"card_id"          validate:"required"`
	Outcome        string    `json:"outcome"          validate:"required,oneof=again hard good easy"`
	ResponseTimeMs int64     `json:"response_time_ms" validate:"required,min=100,max=300000"`
	UserAnswer     string    `json:"user_answer"      validate:"max=1000"`
	HintUsed       bool      `json:"hint_used"`
	Confidence     int       `json:"confidence"       validate:"min=0,max=5"`
}

// SkipCardRequest is the payload of POST /api/sessions/{id}/skip.
type SkipCardRequest struct {
	CardID uuid.UUID `json:"card_id" validate:"required"`
}

// PreferencesRequest is the payload of PUT /api/preferences.
type PreferencesRequest struct {
	DailyReviewLimit    int      `json:"daily_review_limit"    validate:"min=0,max=1000"`
	DailyNewCardLimit   int      `json:"daily_new_card_limit"  validate:"min=0,max=1000"`
	SessionGoal         int      `json:"session_goal"          validate:"min=0,max=100"`
	MaximumIntervalDays int      `json:"maximum_interval_days" validate:"min=0,max=36500"`
	DefaultReviewMode   string   `json:"default_review_mode"   validate:"omitempty,oneof=due_cards difficult_cards new_cards random_review all_cards targeted_review"`
	IncludedWordTypes   []string `json:"included_word_types"`
	ExcludedWordTypes   []string `json:"excluded_word_types"`
}

// PreferencesResponse is the client view of review preferences.
type PreferencesResponse struct {
	DailyReviewLimit    int      `json:"daily_review_limit"`
	DailyNewCardLimit   int      `json:"daily_new_card_limit"`
	SessionGoal         int      `json:"session_goal"`
	MaximumIntervalDays int      `json:"maximum_interval_days"`
	DefaultReviewMode   string   `json:"default_review_mode"`
	IncludedWordTypes   []string `json:"included_word_types"`
	ExcludedWordTypes   []string `json:"excluded_word_types"`
}

// CardResponse is the client view of a card state.
type CardResponse struct {
	ID                   uuid.UUID   `json:"id"`
	WordID               uuid.UUID   `json:"word_id"`
	WordType             string      `json:"word_type,omitempty"`
	ListIDs              []uuid.UUID `json:"list_ids,omitempty"`
	EaseFactor           float64     `json:"ease_factor"`
	IntervalDays         int         `json:"interval_days"`
	DueDate              time.Time   `json:"due_date"`
	ConsecutiveCorrect   int         `json:"consecutive_correct"`
	ConsecutiveIncorrect int         `json:"consecutive_incorrect"`
	TotalReviews         int         `json:"total_reviews"`
	CorrectReviews       int         `json:"correct_reviews"`
	Accuracy             float64     `json:"accuracy"`
	AverageResponseTime  float64     `json:"average_response_time_ms"`
	IsSuspended          bool        `json:"is_suspended"`
	LastReviewOutcome    string      `json:"last_review_outcome,omitempty"`
	LastReviewedAt       *time.Time  `json:"last_reviewed_at,omitempty"`
	Version              int64       `json:"version"`
}

// SessionCardResponse is one entry of a session queue.
type SessionCardResponse struct {
	CardID          uuid.UUID  `json:"card_id"`
	WordID          uuid.UUID  `json:"word_id"`
	Position        int        `json:"position"`
	Outcome         string     `json:"outcome,omitempty"`
	ResponseTimeMs  int64      `json:"response_time_ms,omitempty"`
	IntervalBefore  int        `json:"interval_before"`
	IntervalAfter   int        `json:"interval_after"`
	EaseBefore      float64    `json:"ease_factor_before,omitempty"`
	EaseAfter       float64    `json:"ease_factor_after,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	Skipped         bool       `json:"skipped,omitempty"`
	IsRepeat        bool       `json:"is_repeat,omitempty"`
	RepeatScheduled bool       `json:"repeat_scheduled,omitempty"`
}

// SessionResponse is the client view of a review session.
type SessionResponse struct {
	ID             uuid.UUID             `json:"id"`
	Mode           string                `json:"mode"`
	Status         string                `json:"status"`
	CurrentIndex   int                   `json:"current_index"`
	CurrentCard    *SessionCardResponse  `json:"current_card,omitempty"`
	Cards          []SessionCardResponse `json:"cards"`
	CompletedCards int                   `json:"completed_cards"`
	CorrectAnswers int                   `json:"correct_answers"`
	SkippedCards   int                   `json:"skipped_cards"`
	StartTime      time.Time             `json:"start_time"`
	EndTime        *time.Time            `json:"end_time,omitempty"`
	Version        int64                 `json:"version"`
}

// SubmitReviewResponse is the result of a submitted review.
type SubmitReviewResponse struct {
	Session   SessionResponse     `json:"session"`
	Entry     SessionCardResponse `json:"entry"`
	Card      CardResponse        `json:"card"`
	Requeued  bool                `json:"requeued"`
	Completed bool                `json:"completed"`
}

// QueueResponse is the result of a queue preview.
type QueueResponse struct {
	CardIDs []uuid.UUID `json:"card_ids"`
}

// ModesResponse lists the review modes with a non-empty queue.
type ModesResponse struct {
	Modes []string `json:"modes"`
}

// StatisticsResponse is the client view of session statistics.
type StatisticsResponse struct {
	Status                string  `json:"status"`
	TotalCards            int     `json:"total_cards"`
	CompletedCards        int     `json:"completed_cards"`
	CorrectAnswers        int     `json:"correct_answers"`
	SkippedCards          int     `json:"skipped_cards"`
	RemainingCards        int     `json:"remaining_cards"`
	Accuracy              float64 `json:"accuracy"`
	ProgressPercentage    float64 `json:"progress_percentage"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	ActiveSeconds         float64 `json:"active_seconds"`
	CardsPerMinute        float64 `json:"cards_per_minute"`
}

func wordTypes(names []string) ([]domain.WordType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]domain.WordType, 0, len(names))
	for _, name := range names {
		wt, err := domain.ParseWordType(name)
		if err != nil {
			return nil, err
		}
		out = append(out, wt)
	}
	return out, nil
}

func wordTypeNames(types []domain.WordType) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, wt := range types {
		out = append(out, string(wt))
	}
	return out
}

// toPolicy converts the request into a selection policy.
func (p PolicyRequest) toPolicy() (selection.Policy, error) {
	include, err := wordTypes(p.IncludeWordTypes)
	if err != nil {
		return selection.Policy{}, err
	}
	exclude, err := wordTypes(p.ExcludeWordTypes)
	if err != nil {
		return selection.Policy{}, err
	}

	return selection.Policy{
		Mode:                selection.Mode(p.Mode),
		Limit:               p.Limit,
		IncludeListIDs:      p.IncludeListIDs,
		ExcludeListIDs:      p.ExcludeListIDs,
		IncludeWordTypes:    include,
		ExcludeWordTypes:    exclude,
		TargetCardIDs:       p.TargetCardIDs,
		PrioritizeDueCards:  p.PrioritizeDueCards,
		ShuffleCards:        p.ShuffleCards,
		MaxNewCards:         p.MaxNewCards,
		DifficultyThreshold: p.DifficultyThreshold,
	}, nil
}

func (req PreferencesRequest) toPreferences(userID uuid.UUID) (*domain.ReviewPreferences, error) {
	include, err := wordTypes(req.IncludedWordTypes)
	if err != nil {
		return nil, err
	}
	exclude, err := wordTypes(req.ExcludedWordTypes)
	if err != nil {
		return nil, err
	}
	return &domain.ReviewPreferences{
		UserID:              userID,
		DailyReviewLimit:    req.DailyReviewLimit,
		DailyNewCardLimit:   req.DailyNewCardLimit,
		SessionGoal:         req.SessionGoal,
		MaximumIntervalDays: req.MaximumIntervalDays,
		DefaultReviewMode:   req.DefaultReviewMode,
		IncludedWordTypes:   include,
		ExcludedWordTypes:   exclude,
	}, nil
}

func preferencesToResponse(prefs *domain.ReviewPreferences) PreferencesResponse {
	return PreferencesResponse{
		DailyReviewLimit:    prefs.DailyReviewLimit,
		DailyNewCardLimit:   prefs.DailyNewCardLimit,
		SessionGoal:         prefs.SessionGoal,
		MaximumIntervalDays: prefs.MaximumIntervalDays,
		DefaultReviewMode:   prefs.DefaultReviewMode,
		IncludedWordTypes:   wordTypeNames(prefs.IncludedWordTypes),
		ExcludedWordTypes:   wordTypeNames(prefs.ExcludedWordTypes),
	}
}

func cardToResponse(card *domain.CardState) CardResponse {
	resp := CardResponse{
		ID:                   card.ID,
		WordID:               card.WordID,
		WordType:             string(card.WordType),
		ListIDs:              card.ListIDs,
		EaseFactor:           card.EaseFactor,
		IntervalDays:         card.IntervalDays,
		DueDate:              card.DueDate,
		ConsecutiveCorrect:   card.ConsecutiveCorrect,
		ConsecutiveIncorrect: card.ConsecutiveIncorrect,
		TotalReviews:         card.TotalReviews,
		CorrectReviews:       card.CorrectReviews,
		Accuracy:             card.Accuracy(),
		AverageResponseTime:  card.AverageResponseTime,
		IsSuspended:          card.IsSuspended,
		LastReviewOutcome:    string(card.LastReviewOutcome),
		Version:              card.Version,
	}
	if !card.LastReviewedAt.IsZero() {
		reviewed := card.LastReviewedAt
		resp.LastReviewedAt = &reviewed
	}
	return resp
}

func cardsToResponse(cards []*domain.CardState) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func sessionCardToResponse(c *session.Card) SessionCardResponse {
	return SessionCardResponse{
		CardID:          c.CardID,
		WordID:          c.WordID,
		Position:        c.Position,
		Outcome:         string(c.Outcome),
		ResponseTimeMs:  c.ResponseTimeMs,
		IntervalBefore:  c.IntervalBefore,
		IntervalAfter:   c.IntervalAfter,
		EaseBefore:      c.EaseFactorBefore,
		EaseAfter:       c.EaseFactorAfter,
		ReviewedAt:      c.ReviewedAt,
		Skipped:         c.Skipped,
		IsRepeat:        c.IsRepeat,
		RepeatScheduled: c.Requeued,
	}
}

func sessionToResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{
		ID:             sess.ID,
		Mode:           string(sess.Mode),
		Status:         string(sess.Status),
		CurrentIndex:   sess.CurrentIndex,
		Cards:          make([]SessionCardResponse, 0, len(sess.Cards)),
		CompletedCards: sess.CompletedCards,
		CorrectAnswers: sess.CorrectAnswers,
		SkippedCards:   sess.SkippedCards,
		StartTime:      sess.StartTime,
		EndTime:        sess.EndTime,
		Version:        sess.Version,
	}
	for _, c := range sess.Cards {
		resp.Cards = append(resp.Cards, sessionCardToResponse(c))
	}
	if current := sess.CurrentCard(); current != nil {
		entry := sessionCardToResponse(current)
		resp.CurrentCard = &entry
	}
	return resp
}

func submitResultToResponse(res *review.SubmitResult) SubmitReviewResponse {
	return SubmitReviewResponse{
		Session:   sessionToResponse(res.Session),
		Entry:     sessionCardToResponse(res.Entry),
		Card:      cardToResponse(res.Card),
		Requeued:  res.Requeued,
		Completed: res.Completed,
	}
}

func statisticsToResponse(stats *session.Statistics) StatisticsResponse {
	return StatisticsResponse{
		Status:                string(stats.Status),
		TotalCards:            stats.TotalCards,
		CompletedCards:        stats.CompletedCards,
		CorrectAnswers:        stats.CorrectAnswers,
		SkippedCards:          stats.SkippedCards,
		RemainingCards:        stats.RemainingCards,
		Accuracy:              stats.Accuracy,
		ProgressPercentage:    stats.ProgressPercentage,
		AverageResponseTimeMs: stats.AverageResponseTimeMs,
		ActiveSeconds:         stats.ActiveDuration.Seconds(),
		CardsPerMinute:        stats.CardsPerMinute,
	}
}
