package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	HandledCount int
	LastEvent    *ReviewSessionEvent
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ReviewSessionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func newEvent(t *testing.T, payload any) *ReviewSessionEvent {
	t.Helper()
	event, err := NewReviewSessionEvent(
		TypeReviewSubmitted, uuid.New(), uuid.New(), payload,
		time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return event
}

func TestNewReviewSessionEvent(t *testing.T) {
	t.Parallel()

	payload := ReviewSubmittedPayload{CardID: uuid.New(), Outcome: "good", IntervalAfter: 6}
	event := newEvent(t, payload)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeReviewSubmitted, event.Type)

	var decoded ReviewSubmittedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)

	bare := newEvent(t, nil)
	assert.Empty(t, bare.Payload)

	_, err := NewReviewSessionEvent(TypeSessionStarted, uuid.New(), uuid.New(), make(chan int), time.Now())
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, nil)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := newEvent(t, nil)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)

		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), newEvent(t, nil))
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount)
	})

	t.Run("handler func", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)

		var got string
		emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, e *ReviewSessionEvent) error {
			got = e.Type
			return nil
		}))
		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, nil)))
		assert.Equal(t, TypeReviewSubmitted, got)
	})
}

func TestLoggingHandler(t *testing.T) {
	t.Parallel()

	buf, l := logger.NewTestLogger(t)
	handler := NewLoggingHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	event := newEvent(t, SessionFinishedPayload{TotalCards: 3, Reason: "idle_timeout"})

	// The context logger takes precedence over the handler's own.
	ctx := logger.WithLogger(context.Background(), l)
	require.NoError(t, handler.HandleEvent(ctx, event))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, TypeReviewSubmitted, entries[0]["msg"])
	assert.Equal(t, event.SessionID.String(), entries[0]["session_id"])
	logger.AssertLogContains(t, buf, "idle_timeout")
}
