package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/service/review"
)

// CardHandler handles card state, queue preview and preferences requests.
type CardHandler struct {
	service review.Service
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service review.Service, logger *slog.Logger) *CardHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		service: service,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// EnrollCard handles POST /api/cards.
func (h *CardHandler) EnrollCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req EnrollCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	var wordType domain.WordType
	if req.WordType != "" {
		wt, err := domain.ParseWordType(req.WordType)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		wordType = wt
	}

	card, err := h.service.EnrollCard(r.Context(), userID, review.EnrollRequest{
		WordID:   req.WordID,
		WordType: wordType,
		ListIDs:  req.ListIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to enroll word")
		return
	}

	log.Debug("card enrolled",
		slog.String("card_id", card.ID.String()),
		slog.String("word_id", card.WordID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// ListCards handles GET /api/cards.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	cards, err := h.service.ListCards(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.service.GetCard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PreviewQueue handles GET /api/cards/queue.
func (h *CardHandler) PreviewQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	policy, err := parseQueuePolicy(r)
	if err != nil {
		log.Warn("invalid queue query", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	queue, err := h.service.PreviewQueue(r.Context(), userID, policy)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to select cards")
		return
	}

	log.Debug("queue previewed",
		slog.String("mode", string(policy.Mode)),
		slog.Int("size", len(queue)))
	shared.RespondWithJSON(w, r, http.StatusOK, QueueResponse{CardIDs: selection.IDs(queue)})
}

// AvailableModes handles GET /api/modes.
func (h *CardHandler) AvailableModes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	modes, err := h.service.AvailableModes(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list review modes")
		return
	}

	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ModesResponse{Modes: names})
}

type cardMaintenanceFunc func(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error)

func (h *CardHandler) runMaintenance(w http.ResponseWriter, r *http.Request, action string, op cardMaintenanceFunc) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := op(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to "+action+" card")
		return
	}

	log.Debug("card maintenance applied",
		slog.String("action", action),
		slog.String("card_id", cardID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// SuspendCard handles POST /api/cards/{id}/suspend.
func (h *CardHandler) SuspendCard(w http.ResponseWriter, r *http.Request) {
	h.runMaintenance(w, r, "suspend", h.service.SuspendCard)
}

// UnsuspendCard handles POST /api/cards/{id}/unsuspend.
func (h *CardHandler) UnsuspendCard(w http.ResponseWriter, r *http.Request) {
	h.runMaintenance(w, r, "unsuspend", h.service.UnsuspendCard)
}

// ResetCard handles POST /api/cards/{id}/reset.
func (h *CardHandler) ResetCard(w http.ResponseWriter, r *http.Request) {
	h.runMaintenance(w, r, "reset", h.service.ResetCard)
}

// PostponeCard handles POST /api/cards/{id}/postpone.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.service.PostponeCard(r.Context(), userID, cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}

	log.Debug("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetPreferences handles GET /api/preferences.
func (h *CardHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get preferences")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, preferencesToResponse(prefs))
}

// UpdatePreferences handles PUT /api/preferences.
func (h *CardHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req PreferencesRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	prefs, err := req.toPreferences(userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.service.UpdatePreferences(r.Context(), prefs); err != nil {
		HandleAPIError(w, r, err, "Failed to update preferences")
		return
	}

	log.Debug("preferences updated")
	shared.RespondWithJSON(w, r, http.StatusOK, preferencesToResponse(prefs))
}
