package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/service/review"
)

// SessionHandler handles review session requests.
type SessionHandler struct {
	service review.Service
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service review.Service, logger *slog.Logger) *SessionHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		service: service,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /api/sessions.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	policy, err := req.toPolicy()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.service.StartSession(r.Context(), userID, review.StartSessionRequest{
		Policy:          policy,
		RepeatIncorrect: req.RepeatIncorrect,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	log.Info("review session started",
		slog.String("session_id", sess.ID.String()),
		slog.String("mode", string(sess.Mode)),
		slog.Int("cards", len(sess.Cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(sess))
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	sess, err := h.service.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess))
}

// SubmitReview handles POST /api/sessions/{id}/reviews.
func (h *SessionHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	outcome, err := domain.ParseReviewOutcome(req.Outcome)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.service.SubmitReview(r.Context(), userID, sessionID, session.Submission{
		CardID:         req.CardID,
		Outcome:        outcome,
		ResponseTimeMs: req.ResponseTimeMs,
		UserAnswer:     req.UserAnswer,
		HintUsed:       req.HintUsed,
		Confidence:     req.Confidence,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", req.CardID.String()),
		slog.String("outcome", string(outcome)),
		slog.Bool("completed", res.Completed))
	shared.RespondWithJSON(w, r, http.StatusOK, submitResultToResponse(res))
}

// SkipCard handles POST /api/sessions/{id}/skip.
func (h *SessionHandler) SkipCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SkipCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	sess, err := h.service.SkipCard(r.Context(), userID, sessionID, req.CardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to skip card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess))
}

type sessionTransitionFunc func(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error)

func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, action string, op sessionTransitionFunc) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	sess, err := op(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to "+action+" review session")
		return
	}

	log.Debug("review session transitioned",
		slog.String("session_id", sessionID.String()),
		slog.String("action", action),
		slog.String("status", string(sess.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess))
}

// PauseSession handles POST /api/sessions/{id}/pause.
func (h *SessionHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "pause", h.service.PauseSession)
}

// ResumeSession handles POST /api/sessions/{id}/resume.
func (h *SessionHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "resume", h.service.ResumeSession)
}

// CancelSession handles POST /api/sessions/{id}/cancel.
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", h.service.CancelSession)
}

// CompleteSession handles POST /api/sessions/{id}/complete.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete", h.service.CompleteSession)
}

// SessionStatistics handles GET /api/sessions/{id}/stats.
func (h *SessionHandler) SessionStatistics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	stats, err := h.service.SessionStatistics(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statisticsToResponse(stats))
}
