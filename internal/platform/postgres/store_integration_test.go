package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/phrazzld/vocab-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardStateStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		cards := postgres.NewPostgresCardStateStore(tx, nil)

		now := time.Now().UTC().Truncate(time.Microsecond)
		card, err := domain.NewCardState(uuid.New(), uuid.New(), domain.WordTypeAdjective, []uuid.UUID{uuid.New()}, now)
		require.NoError(t, err)
		require.NoError(t, cards.Create(ctx, card))

		dup, err := domain.NewCardState(card.UserID, card.WordID, "", nil, now)
		require.NoError(t, err)
		assert.ErrorIs(t, cards.Create(ctx, dup), store.ErrCardStateExists)

		locked, err := cards.GetForUpdate(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, card.ListIDs, locked.ListIDs)
		assert.True(t, locked.LastReviewedAt.IsZero())

		locked.IntervalDays = 6
		locked.TotalReviews = 1
		locked.CorrectReviews = 1
		locked.ConsecutiveCorrect = 1
		locked.LastReviewOutcome = domain.ReviewOutcomeGood
		locked.LastReviewedAt = now
		require.NoError(t, cards.Update(ctx, locked))
		assert.Equal(t, int64(1), locked.Version)

		// The original read is now stale.
		card.IntervalDays = 1
		assert.ErrorIs(t, cards.Update(ctx, card), store.ErrVersionConflict)

		listed, err := cards.ListByUser(ctx, card.UserID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 6, listed[0].IntervalDays)
		assert.True(t, listed[0].LastReviewedAt.Equal(now))

		_, err = cards.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrCardStateNotFound)
	})
}

func TestSessionStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		sessions := postgres.NewPostgresSessionStore(tx, nil)

		now := time.Now().UTC().Truncate(time.Microsecond)
		card, err := domain.NewCardState(uuid.New(), uuid.New(), "", nil, now)
		require.NoError(t, err)

		sess, err := session.New(card.UserID, selection.ModeAllCards, []*domain.CardState{card}, session.Options{}, now)
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, sess))

		second, err := session.New(card.UserID, selection.ModeNewCards, []*domain.CardState{card}, session.Options{}, now)
		require.NoError(t, err)
		assert.ErrorIs(t, sessions.Create(ctx, second), store.ErrOpenSessionExists)

		open, err := sessions.ListOpenByUser(ctx, card.UserID)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, sess.ID, open[0].ID)
		require.Len(t, open[0].Cards, 1)
		assert.Equal(t, card.ID, open[0].Cards[0].CardID)

		idle, err := sessions.ListIdleBefore(ctx, now.Add(time.Minute), 10)
		require.NoError(t, err)
		assert.NotEmpty(t, idle)

		require.NoError(t, sess.Cancel(now.Add(time.Minute)))
		require.NoError(t, sessions.Update(ctx, sess))

		got, err := sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, session.StatusCancelled, got.Status)
		assert.Equal(t, int64(1), got.Version)

		open, err = sessions.ListOpenByUser(ctx, card.UserID)
		require.NoError(t, err)
		assert.Empty(t, open)
	})
}

func TestPreferencesStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		prefsStore := postgres.NewPostgresPreferencesStore(tx, nil)
		userID := uuid.New()

		prefs, err := prefsStore.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultReviewPreferences(userID), prefs)

		prefs.SessionGoal = 12
		prefs.ExcludedWordTypes = []domain.WordType{domain.WordTypeIdiom}
		require.NoError(t, prefsStore.Upsert(ctx, prefs))
		require.NoError(t, prefsStore.Upsert(ctx, prefs))

		saved, err := prefsStore.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, prefs, saved)
	})
}

func TestMigrationVersion(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	version, err := postgres.MigrationVersion(context.Background(), db, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(20260601120200))
}
