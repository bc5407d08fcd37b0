package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()
	wordID := uuid.New()
	listID := uuid.New()
	lists := []uuid.UUID{listID}

	card, err := NewCardState(userID, wordID, WordTypeNoun, lists, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, wordID, card.WordID)
	assert.Equal(t, WordTypeNoun, card.WordType)
	assert.Equal(t, InitialEaseFactor, card.EaseFactor)
	assert.Zero(t, card.IntervalDays)
	assert.Equal(t, now, card.DueDate)
	assert.True(t, card.IsActive)
	assert.False(t, card.IsSuspended)
	assert.True(t, card.IsNew())
	assert.True(t, card.IsDue(now))
	assert.True(t, card.InList(listID))

	// The card owns its list slice.
	lists[0] = uuid.New()
	assert.True(t, card.InList(listID))
}

func TestNewCardStateInvalid(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name     string
		userID   uuid.UUID
		wordID   uuid.UUID
		wordType WordType
		want     error
	}{
		{"nil user", uuid.Nil, uuid.New(), WordTypeVerb, ErrCardStateUserIDEmpty},
		{"nil word", uuid.New(), uuid.Nil, WordTypeVerb, ErrCardStateWordIDEmpty},
		{"unknown word type", uuid.New(), uuid.New(), WordType("gerund"), ErrInvalidWordType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCardState(tt.userID, tt.wordID, tt.wordType, nil, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCardStateValidate(t *testing.T) {
	t.Parallel()

	valid := func() CardState {
		return CardState{
			ID:         uuid.New(),
			UserID:     uuid.New(),
			WordID:     uuid.New(),
			EaseFactor: InitialEaseFactor,
			IsActive:   true,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *CardState)
		want   error
	}{
		{"valid", func(c *CardState) {}, nil},
		{"nil id", func(c *CardState) { c.ID = uuid.Nil }, ErrCardStateIDEmpty},
		{"ease below floor", func(c *CardState) { c.EaseFactor = 1.29 }, ErrInvalidEaseFactor},
		{"ease at floor", func(c *CardState) { c.EaseFactor = MinEaseFactor }, nil},
		{"negative interval", func(c *CardState) { c.IntervalDays = -1 }, ErrInvalidInterval},
		{"negative counter", func(c *CardState) { c.ReviewCountHard = -1 }, ErrNegativeCounter},
		{
			"correct exceeds total",
			func(c *CardState) { c.TotalReviews = 1; c.CorrectReviews = 2 },
			ErrInvalidReviewCounters,
		},
		{
			"both streaks",
			func(c *CardState) { c.ConsecutiveCorrect = 1; c.ConsecutiveIncorrect = 1 },
			ErrConflictingStreaks,
		},
		{
			"unknown last outcome",
			func(c *CardState) { c.LastReviewOutcome = "perfect" },
			ErrInvalidLastReviewOutcome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestCardStateHelpers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	card := &CardState{
		DueDate:        now.Add(time.Hour),
		TotalReviews:   4,
		CorrectReviews: 3,
		IsActive:       true,
		IsSuspended:    true,
		ListIDs:        []uuid.UUID{uuid.New()},
	}

	assert.False(t, card.IsDue(now))
	assert.True(t, card.IsDue(now.Add(time.Hour)))
	assert.False(t, card.IsNew())
	assert.False(t, card.IsSelectable())
	assert.InDelta(t, 0.75, card.Accuracy(), 1e-9)
	assert.Zero(t, (&CardState{}).Accuracy())

	clone := card.Clone()
	clone.ListIDs[0] = uuid.New()
	clone.TotalReviews = 10
	assert.NotEqual(t, clone.ListIDs[0], card.ListIDs[0])
	assert.Equal(t, 4, card.TotalReviews)

	var nilCard *CardState
	assert.Nil(t, nilCard.Clone())
}
