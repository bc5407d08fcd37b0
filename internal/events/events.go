package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Review session event types.
const (
	TypeSessionStarted   = "session.started"
	TypeReviewSubmitted  = "review.submitted"
	TypeCardSkipped      = "card.skipped"
	TypeSessionPaused    = "session.paused"
	TypeSessionResumed   = "session.resumed"
	TypeSessionCompleted = "session.completed"
	TypeSessionCancelled = "session.cancelled"
)

// ReviewSessionEvent describes something that happened to a review session.
// It carries identifiers and a JSON payload so that handlers need no
// dependency on the session package.
type ReviewSessionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ReviewSessionEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewReviewSessionEvent creates an event of the given type. A nil payload
// leaves the event without one.
func NewReviewSessionEvent(
	eventType string,
	sessionID, userID uuid.UUID,
	payload any,
	occurredAt time.Time,
) (*ReviewSessionEvent, error) {
	event := &ReviewSessionEvent{
		ID:         uuid.New(),
		Type:       eventType,
		SessionID:  sessionID,
		UserID:     userID,
		OccurredAt: occurredAt,
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = payloadBytes
	}

	return event, nil
}

// ReviewSubmittedPayload is the payload of a review.submitted event.
type ReviewSubmittedPayload struct {
	CardID         uuid.UUID `json:"card_id"`
	Outcome        string    `json:"outcome"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	IntervalAfter  int       `json:"interval_after"`
	Requeued       bool      `json:"requeued"`
}

// SessionFinishedPayload is the payload of session.completed and
// session.cancelled events.
type SessionFinishedPayload struct {
	TotalCards     int     `json:"total_cards"`
	CompletedCards int     `json:"completed_cards"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
	Reason         string  `json:"reason,omitempty"` // e.g. "idle_timeout"
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ReviewSessionEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ReviewSessionEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ReviewSessionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ReviewSessionEvent) error
}
