package domain

import "errors"

// Engine error taxonomy. Every failure returned by the scheduling, selection and
// session packages matches exactly one of these with errors.Is. All of them are
// recoverable by the caller and none of them leave state partially mutated.
var (
	// ErrInvalidInput is returned for a malformed response time, outcome, limit
	// or entity. Specific validation errors wrap it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQueue is returned when no cards match a selection policy and a
	// session therefore cannot be created.
	ErrEmptyQueue = errors.New("no cards match the selection policy")

	// ErrOutOfSequence is returned when a submission targets a card that is not
	// at the session's current position.
	ErrOutOfSequence = errors.New("card is not the current card of the session")

	// ErrInvalidTransition is returned when pause, resume, submit or skip is
	// called in a state that forbids it.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrSessionClosed is returned for any operation on a completed or
	// cancelled session.
	ErrSessionClosed = errors.New("session is closed")
)
