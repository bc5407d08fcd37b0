package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/service/review"
	"github.com/phrazzld/vocab-api/internal/store"
)

// MapErrorToStatusCode maps service and engine errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, review.ErrCardNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone

	case errors.Is(err, domain.ErrOutOfSequence),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, review.ErrSessionInProgress),
		errors.Is(err, review.ErrCardExists),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict

	case errors.Is(err, domain.ErrEmptyQueue):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrNotOwned):
		return "You do not have access to this resource"
	case errors.Is(err, review.ErrSessionNotFound):
		return "Review session not found"
	case errors.Is(err, review.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, domain.ErrSessionClosed):
		return "Review session is closed"
	case errors.Is(err, domain.ErrOutOfSequence):
		return "Card is not the current card of the session"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Operation not allowed in the session's current state"
	case errors.Is(err, review.ErrSessionInProgress):
		return "A review session is already in progress"
	case errors.Is(err, review.ErrCardExists):
		return "Word is already being studied"
	case errors.Is(err, store.ErrVersionConflict):
		return "The resource was modified concurrently, please retry"
	case errors.Is(err, domain.ErrEmptyQueue):
		return "No cards match the review criteria"
	case errors.Is(err, domain.ErrInvalidInput):
		// Domain validation messages name the offending value, never internals.
		return capitalize(err.Error())
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of internal server errors when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe))
}

func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
