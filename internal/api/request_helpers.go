package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// getUserIDFromContext returns the user set by the RequireUser middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.GetUserID(r.Context())
}

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidInput, paramName)
	}
	return id, nil
}

// requireUser extracts the user ID from the context and writes a 401 when it
// is missing.
func requireUser(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the user ID from the context and a UUID
// from the path, writing an error response if either fails.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := requireUser(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// decodeAndValidate decodes the body into req and validates it, writing a 400
// on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}

// parseQueuePolicy reads a selection policy from the query string of
// GET /api/cards/queue.
func parseQueuePolicy(r *http.Request) (selection.Policy, error) {
	q := r.URL.Query()
	var policy selection.Policy

	if raw := q.Get("mode"); raw != "" {
		mode, err := selection.ParseMode(raw)
		if err != nil {
			return policy, err
		}
		policy.Mode = mode
	}

	var err error
	if policy.Limit, err = queryInt(q.Get("limit"), "limit", 1, selection.MaxLimit); err != nil {
		return policy, err
	}
	if policy.MaxNewCards, err = queryInt(q.Get("max_new"), "max_new", 0, selection.MaxLimit); err != nil {
		return policy, err
	}
	if policy.ShuffleCards, err = queryBool(q.Get("shuffle"), "shuffle"); err != nil {
		return policy, err
	}
	if policy.PrioritizeDueCards, err = queryBool(q.Get("prioritize_due"), "prioritize_due"); err != nil {
		return policy, err
	}
	return policy, nil
}

func queryInt(raw, name string, minimum, maximum int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minimum || n > maximum {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", domain.ErrInvalidInput, name, minimum, maximum)
	}
	return n, nil
}

func queryBool(raw, name string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, name)
	}
	return b, nil
}
