package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/events"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// Config tunes the review service.
type Config struct {
	MaxSessionLimit int           // Upper bound for a session's queue length
	UpdateRetries   uint64        // Retries after a version conflict
	RetryBaseDelay  time.Duration // First backoff delay, doubled per retry
	SweepBatchSize  int           // Sessions examined per ExpireIdleSessions call
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxSessionLimit: selection.MaxLimit,
		UpdateRetries:   3,
		RetryBaseDelay:  20 * time.Millisecond,
		SweepBatchSize:  100,
	}
}

// Option configures the service.
type Option func(*reviewService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *reviewService) {
		s.now = now
	}
}

// WithSelector replaces the default selector.
func WithSelector(selector *selection.Selector) Option {
	return func(s *reviewService) {
		s.selector = selector
	}
}

// WithEventEmitter sets the emitter that receives session events.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *reviewService) {
		s.emitter = emitter
	}
}

var _ Service = (*reviewService)(nil)

type reviewService struct {
	stores    Stores
	tx        TxRunner
	scheduler srs.Service
	selector  *selection.Selector
	emitter   events.EventEmitter
	cfg       Config
	locks     *keyedMutex
	now       func() time.Time
	logger    *slog.Logger
}

// NewReviewService creates the review service. stores is used for reads
// outside transactions; tx supplies transaction-bound stores for writes.
func NewReviewService(
	stores Stores,
	tx TxRunner,
	scheduler srs.Service,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if stores.Cards == nil || stores.Sessions == nil || stores.Preferences == nil {
		panic("stores cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if cfg.MaxSessionLimit <= 0 || cfg.MaxSessionLimit > selection.MaxLimit {
		cfg.MaxSessionLimit = defaults.MaxSessionLimit
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaults.SweepBatchSize
	}

	s := &reviewService{
		stores:    stores,
		tx:        tx,
		scheduler: scheduler,
		selector:  selection.NewSelector(),
		cfg:       cfg,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withRetry runs fn again while it fails with a version conflict.
func (s *reviewService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.cfg.UpdateRetries, retry.NewExponential(s.cfg.RetryBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, store.ErrVersionConflict) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("version conflict, retrying",
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
}

// failure passes expected errors through unchanged and wraps everything else
// in a ServiceError.
func (s *reviewService) failure(ctx context.Context, op string, err error) error {
	if isExpected(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("review operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError(op, "unexpected failure", err)
}

func isExpected(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrEmptyQueue,
		domain.ErrOutOfSequence,
		domain.ErrInvalidTransition,
		domain.ErrSessionClosed,
		ErrSessionNotFound,
		ErrCardNotFound,
		ErrNotOwned,
		ErrSessionInProgress,
		ErrCardExists,
		errSessionActive,
		store.ErrVersionConflict,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, store.ErrCardStateNotFound):
		return ErrCardNotFound
	case errors.Is(err, store.ErrOpenSessionExists):
		return ErrSessionInProgress
	case errors.Is(err, store.ErrCardStateExists):
		return ErrCardExists
	default:
		return err
	}
}

// emit publishes an event after a committed change. Failures are logged only.
func (s *reviewService) emit(ctx context.Context, eventType string, sess *session.Session, payload any) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewReviewSessionEvent(eventType, sess.ID, sess.UserID, payload, s.now())
	if err != nil {
		log.Error("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("session_id", sess.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *reviewService) emitFinished(ctx context.Context, sess *session.Session, reason string) {
	stats := sess.Statistics(s.now())
	eventType := events.TypeSessionCompleted
	if sess.Status == session.StatusCancelled {
		eventType = events.TypeSessionCancelled
	}
	s.emit(ctx, eventType, sess, events.SessionFinishedPayload{
		TotalCards:     stats.TotalCards,
		CompletedCards: stats.CompletedCards,
		CorrectAnswers: stats.CorrectAnswers,
		Accuracy:       stats.Accuracy,
		Reason:         reason,
	})
}

// EnrollCard implements Service.EnrollCard.
func (s *reviewService) EnrollCard(
	ctx context.Context,
	userID uuid.UUID,
	req EnrollRequest,
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCardState(userID, req.WordID, req.WordType, req.ListIDs, s.now())
	if err != nil {
		log.Warn("invalid card state", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.stores.Cards.Create(ctx, card); err != nil {
		return nil, s.failure(ctx, "enroll_card", mapStoreError(err))
	}

	log.Debug("card enrolled",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))
	return card, nil
}

// GetCard implements Service.GetCard.
func (s *reviewService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	card, err := s.stores.Cards.Get(ctx, cardID)
	if err != nil {
		return nil, s.failure(ctx, "get_card", mapStoreError(err))
	}
	if card.UserID != userID {
		return nil, ErrNotOwned
	}
	return card, nil
}

// ListCards implements Service.ListCards.
func (s *reviewService) ListCards(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error) {
	cards, err := s.stores.Cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "list_cards", err)
	}
	return cards, nil
}

// PreviewQueue implements Service.PreviewQueue.
func (s *reviewService) PreviewQueue(
	ctx context.Context,
	userID uuid.UUID,
	policy selection.Policy,
) ([]*domain.CardState, error) {
	prefs, err := s.stores.Preferences.Get(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "preview_queue", err)
	}
	pool, err := s.stores.Cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "preview_queue", err)
	}

	queue, err := s.selector.Select(pool, s.resolvePolicy(policy, prefs), s.now())
	if err != nil {
		return nil, err
	}
	return queue, nil
}

// AvailableModes implements Service.AvailableModes.
func (s *reviewService) AvailableModes(ctx context.Context, userID uuid.UUID) ([]selection.Mode, error) {
	pool, err := s.stores.Cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "available_modes", err)
	}
	return selection.AvailableModes(pool, s.now()), nil
}

// resolvePolicy fills unset policy fields from the preferences and applies the
// configured session limit. Due-card queues are also capped by the daily review
// limit.
func (s *reviewService) resolvePolicy(policy selection.Policy, prefs *domain.ReviewPreferences) selection.Policy {
	if policy.Mode == "" {
		policy.Mode = selection.ModeDueCards
		if mode, err := selection.ParseMode(prefs.DefaultReviewMode); err == nil {
			policy.Mode = mode
		}
	}
	if policy.Limit == 0 {
		policy.Limit = prefs.SessionGoal
		if policy.Limit == 0 {
			policy.Limit = domain.DefaultSessionGoal
		}
	}
	policy.Limit = min(policy.Limit, s.cfg.MaxSessionLimit)
	if policy.Mode == selection.ModeDueCards && prefs.DailyReviewLimit > 0 {
		policy.Limit = min(policy.Limit, prefs.DailyReviewLimit)
	}
	if policy.MaxNewCards == 0 {
		policy.MaxNewCards = prefs.DailyNewCardLimit
	}
	if len(policy.IncludeWordTypes) == 0 {
		policy.IncludeWordTypes = prefs.IncludedWordTypes
	}
	if len(policy.ExcludeWordTypes) == 0 {
		policy.ExcludeWordTypes = prefs.ExcludedWordTypes
	}
	return policy
}

// mutateCard loads a card under a row lock, applies fn and writes it back.
func (s *reviewService) mutateCard(
	ctx context.Context,
	op string,
	userID, cardID uuid.UUID,
	fn func(card *domain.CardState, now time.Time) (*domain.CardState, error),
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var updated *domain.CardState
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
			card, err := stores.Cards.GetForUpdate(ctx, cardID)
			if err != nil {
				return mapStoreError(err)
			}
			if card.UserID != userID {
				return ErrNotOwned
			}

			next, err := fn(card, now)
			if err != nil {
				return err
			}
			if err := stores.Cards.Update(ctx, next); err != nil {
				return mapStoreError(err)
			}
			updated = next
			return nil
		})
	})
	if err != nil {
		return nil, s.failure(ctx, op, err)
	}

	log.Debug("card updated",
		slog.String("operation", op),
		slog.String("card_id", cardID.String()))
	return updated, nil
}

// SuspendCard implements Service.SuspendCard.
func (s *reviewService) SuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return s.mutateCard(ctx, "suspend_card", userID, cardID, setSuspended(true))
}

// UnsuspendCard implements Service.UnsuspendCard.
func (s *reviewService) UnsuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return s.mutateCard(ctx, "unsuspend_card", userID, cardID, setSuspended(false))
}

func setSuspended(suspended bool) func(*domain.CardState, time.Time) (*domain.CardState, error) {
	return func(card *domain.CardState, now time.Time) (*domain.CardState, error) {
		next := card.Clone()
		next.IsSuspended = suspended
		next.UpdatedAt = now
		return next, nil
	}
}

// ResetCard implements Service.ResetCard.
func (s *reviewService) ResetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return s.mutateCard(ctx, "reset_card", userID, cardID, s.scheduler.ResetCard)
}

// PostponeCard implements Service.PostponeCard.
func (s *reviewService) PostponeCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
) (*domain.CardState, error) {
	return s.mutateCard(ctx, "postpone_card", userID, cardID,
		func(card *domain.CardState, now time.Time) (*domain.CardState, error) {
			return s.scheduler.PostponeReview(card, days, now)
		})
}

// GetPreferences implements Service.GetPreferences.
func (s *reviewService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error) {
	prefs, err := s.stores.Preferences.Get(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "get_preferences", err)
	}
	return prefs, nil
}

// UpdatePreferences implements Service.UpdatePreferences.
func (s *reviewService) UpdatePreferences(ctx context.Context, prefs *domain.ReviewPreferences) error {
	if prefs.DefaultReviewMode != "" {
		if _, err := selection.ParseMode(prefs.DefaultReviewMode); err != nil {
			return err
		}
	}
	if err := s.stores.Preferences.Upsert(ctx, prefs); err != nil {
		return s.failure(ctx, "update_preferences", err)
	}
	return nil
}

// StartSession implements Service.StartSession.
func (s *reviewService) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	req StartSessionRequest,
) (*session.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var started *session.Session
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		open, err := stores.Sessions.ListOpenByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			log.Debug("user already has an open session",
				slog.String("user_id", userID.String()),
				slog.String("session_id", open[0].ID.String()))
			return ErrSessionInProgress
		}

		prefs, err := stores.Preferences.Get(ctx, userID)
		if err != nil {
			return err
		}
		pool, err := stores.Cards.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		policy := s.resolvePolicy(req.Policy, prefs)
		queue, err := s.selector.Select(pool, policy, now)
		if err != nil {
			return err
		}

		sess, err := session.New(userID, policy.Mode, queue, session.Options{
			RepeatIncorrect:    req.RepeatIncorrect,
			ShuffleCards:       policy.ShuffleCards,
			PrioritizeDueCards: policy.PrioritizeDueCards,
		}, now)
		if err != nil {
			return err
		}

		if err := stores.Sessions.Create(ctx, sess); err != nil {
			return mapStoreError(err)
		}
		started = sess
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQueue) {
			log.Debug("no cards match the session policy", slog.String("user_id", userID.String()))
		}
		return nil, s.failure(ctx, "start_session", err)
	}

	log.Info("review session started",
		slog.String("session_id", started.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("mode", string(started.Mode)),
		slog.Int("cards", len(started.Cards)))
	s.emit(ctx, events.TypeSessionStarted, started, nil)
	return started, nil
}

// loadSession reads a session and checks that userID owns it.
func loadSession(ctx context.Context, sessions store.SessionStore, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if sess.UserID != userID {
		return nil, ErrNotOwned
	}
	return sess, nil
}

// GetSession implements Service.GetSession.
func (s *reviewService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := loadSession(ctx, s.stores.Sessions, userID, sessionID)
	if err != nil {
		return nil, s.failure(ctx, "get_session", err)
	}
	return sess, nil
}

// SessionStatistics implements Service.SessionStatistics.
func (s *reviewService) SessionStatistics(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*session.Statistics, error) {
	sess, err := loadSession(ctx, s.stores.Sessions, userID, sessionID)
	if err != nil {
		return nil, s.failure(ctx, "session_statistics", err)
	}
	stats := sess.Statistics(s.now())
	return &stats, nil
}

// SubmitReview implements Service.SubmitReview.
func (s *reviewService) SubmitReview(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	sub session.Submission,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	now := s.now()
	var out *SubmitResult
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
			sess, err := loadSession(ctx, stores.Sessions, userID, sessionID)
			if err != nil {
				return err
			}
			working := sess.Clone()

			// Lock the card only when the submission can be accepted; the
			// session reports the precise error otherwise.
			var current *domain.CardState
			if entry := working.CurrentCard(); entry != nil &&
				entry.CardID == sub.CardID && working.Status == session.StatusActive {
				current, err = stores.Cards.GetForUpdate(ctx, sub.CardID)
				if err != nil {
					return mapStoreError(err)
				}
			}

			prefs, err := stores.Preferences.Get(ctx, userID)
			if err != nil {
				return err
			}
			scheduler := srs.WithMaxInterval(s.scheduler, prefs.MaximumIntervalDays)

			result, err := working.SubmitReview(sub, current, scheduler, now)
			if err != nil {
				return err
			}

			if err := stores.Cards.Update(ctx, result.Updated); err != nil {
				return mapStoreError(err)
			}
			if err := stores.Sessions.Update(ctx, working); err != nil {
				return mapStoreError(err)
			}

			out = &SubmitResult{
				Session:   working,
				Entry:     result.Entry,
				Card:      result.Updated,
				Requeued:  result.Requeued,
				Completed: result.Completed,
			}
			return nil
		})
	})
	if err != nil {
		log.Debug("review rejected",
			slog.String("session_id", sessionID.String()),
			slog.String("card_id", sub.CardID.String()),
			slog.String("error", err.Error()))
		return nil, s.failure(ctx, "submit_review", err)
	}

	log.Debug("review submitted",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", sub.CardID.String()),
		slog.String("outcome", string(sub.Outcome)),
		slog.Int("interval", out.Card.IntervalDays),
		slog.Time("due_date", out.Card.DueDate))

	s.emit(ctx, events.TypeReviewSubmitted, out.Session, events.ReviewSubmittedPayload{
		CardID:         sub.CardID,
		Outcome:        string(sub.Outcome),
		ResponseTimeMs: sub.ResponseTimeMs,
		IntervalAfter:  out.Card.IntervalDays,
		Requeued:       out.Requeued,
	})
	if out.Completed {
		s.emitFinished(ctx, out.Session, "")
	}
	return out, nil
}

// transition runs fn on a fresh copy of the session and persists the result.
func (s *reviewService) transition(
	ctx context.Context,
	op string,
	userID, sessionID uuid.UUID,
	fn func(sess *session.Session, now time.Time) error,
) (*session.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	now := s.now()
	var updated *session.Session
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
			sess, err := loadSession(ctx, stores.Sessions, userID, sessionID)
			if err != nil {
				return err
			}
			working := sess.Clone()
			if err := fn(working, now); err != nil {
				return err
			}
			if err := stores.Sessions.Update(ctx, working); err != nil {
				return mapStoreError(err)
			}
			updated = working
			return nil
		})
	})
	if err != nil {
		return nil, s.failure(ctx, op, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("session updated",
		slog.String("operation", op),
		slog.String("session_id", sessionID.String()),
		slog.String("status", string(updated.Status)))
	return updated, nil
}

// SkipCard implements Service.SkipCard.
func (s *reviewService) SkipCard(ctx context.Context, userID, sessionID, cardID uuid.UUID) (*session.Session, error) {
	var completed bool
	sess, err := s.transition(ctx, "skip_card", userID, sessionID, func(sess *session.Session, now time.Time) error {
		var err error
		completed, err = sess.Skip(cardID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.TypeCardSkipped, sess, map[string]string{"card_id": cardID.String()})
	if completed {
		s.emitFinished(ctx, sess, "")
	}
	return sess, nil
}

// PauseSession implements Service.PauseSession.
func (s *reviewService) PauseSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.transition(ctx, "pause_session", userID, sessionID, (*session.Session).Pause)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.TypeSessionPaused, sess, nil)
	return sess, nil
}

// ResumeSession implements Service.ResumeSession.
func (s *reviewService) ResumeSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.transition(ctx, "resume_session", userID, sessionID, (*session.Session).Resume)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.TypeSessionResumed, sess, nil)
	return sess, nil
}

// CancelSession implements Service.CancelSession.
func (s *reviewService) CancelSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.transition(ctx, "cancel_session", userID, sessionID, (*session.Session).Cancel)
	if err != nil {
		return nil, err
	}
	s.emitFinished(ctx, sess, "")
	return sess, nil
}

// CompleteSession implements Service.CompleteSession.
func (s *reviewService) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.transition(ctx, "complete_session", userID, sessionID, (*session.Session).Complete)
	if err != nil {
		return nil, err
	}
	s.emitFinished(ctx, sess, "")
	return sess, nil
}

// reasonIdleTimeout marks sessions cancelled by ExpireIdleSessions.
const reasonIdleTimeout = "idle_timeout"

var errSessionActive = errors.New("session has recent activity")

// ExpireIdleSessions implements Service.ExpireIdleSessions.
func (s *reviewService) ExpireIdleSessions(ctx context.Context, idle time.Duration) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if idle <= 0 {
		return 0, fmt.Errorf("%w: idle timeout must be positive", domain.ErrInvalidInput)
	}
	cutoff := s.now().Add(-idle)

	stale, err := s.stores.Sessions.ListIdleBefore(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, s.failure(ctx, "expire_idle_sessions", err)
	}

	expired := 0
	for _, candidate := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		sess, err := s.transition(ctx, "expire_session", candidate.UserID, candidate.ID,
			func(sess *session.Session, now time.Time) error {
				// Activity since the listing keeps the session open.
				if !sess.UpdatedAt.Before(cutoff) {
					return errSessionActive
				}
				return sess.Cancel(now)
			})
		if err != nil {
			if errors.Is(err, errSessionActive) || errors.Is(err, domain.ErrSessionClosed) ||
				errors.Is(err, ErrSessionNotFound) || errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			log.Error("failed to expire session",
				slog.String("session_id", candidate.ID.String()),
				slog.String("error", err.Error()))
			continue
		}

		expired++
		s.emitFinished(ctx, sess, reasonIdleTimeout)
	}

	if expired > 0 {
		log.Info("expired idle sessions",
			slog.Int("count", expired),
			slog.Time("cutoff", cutoff))
	}
	return expired, nil
}
