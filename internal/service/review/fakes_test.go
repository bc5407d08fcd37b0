package review

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory implementation of the three stores with the same
// version semantics as the postgres stores. It copies on every read and write.
type memStore struct {
	mu       sync.Mutex
	cards    map[uuid.UUID]*domain.CardState
	sessions map[uuid.UUID]*session.Session
	prefs    map[uuid.UUID]*domain.ReviewPreferences
}

func newMemStore() *memStore {
	return &memStore{
		cards:    make(map[uuid.UUID]*domain.CardState),
		sessions: make(map[uuid.UUID]*session.Session),
		prefs:    make(map[uuid.UUID]*domain.ReviewPreferences),
	}
}

func (m *memStore) stores() Stores {
	return Stores{
		Cards:       memCards{m},
		Sessions:    memSessions{m},
		Preferences: memPrefs{m},
	}
}

// memTx runs fn directly against the given stores.
type memTx struct {
	stores Stores
	calls  int
}

func (t *memTx) RunInTx(ctx context.Context, fn TxFn) error {
	t.calls++
	return fn(ctx, t.stores)
}

type memCards struct{ m *memStore }

func (c memCards) Create(ctx context.Context, card *domain.CardState) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if err := card.Validate(); err != nil {
		return err
	}
	for _, existing := range c.m.cards {
		if existing.UserID == card.UserID && existing.WordID == card.WordID {
			return store.ErrCardStateExists
		}
	}
	c.m.cards[card.ID] = card.Clone()
	return nil
}

func (c memCards) Get(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	card, ok := c.m.cards[id]
	if !ok {
		return nil, store.ErrCardStateNotFound
	}
	return card.Clone(), nil
}

func (c memCards) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	return c.Get(ctx, id)
}

func (c memCards) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cards := []*domain.CardState{}
	for _, card := range c.m.cards {
		if card.UserID == userID {
			cards = append(cards, card.Clone())
		}
	}
	slices.SortFunc(cards, func(a, b *domain.CardState) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return cards, nil
}

func (c memCards) Update(ctx context.Context, card *domain.CardState) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	existing, ok := c.m.cards[card.ID]
	if !ok {
		return store.ErrCardStateNotFound
	}
	if existing.Version != card.Version {
		return store.ErrVersionConflict
	}
	card.Version++
	c.m.cards[card.ID] = card.Clone()
	return nil
}

func (c memCards) WithTx(*sql.Tx) store.CardStateStore { return c }

type memSessions struct{ m *memStore }

func (s memSessions) Create(ctx context.Context, sess *session.Session) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.sessions {
		if existing.UserID == sess.UserID && !existing.Status.Terminal() {
			return store.ErrOpenSessionExists
		}
	}
	s.m.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s memSessions) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sess, ok := s.m.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s memSessions) Update(ctx context.Context, sess *session.Session) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	existing, ok := s.m.sessions[sess.ID]
	if !ok {
		return store.ErrSessionNotFound
	}
	if existing.Version != sess.Version {
		return store.ErrVersionConflict
	}
	sess.Version++
	s.m.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s memSessions) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	open := []*session.Session{}
	for _, sess := range s.m.sessions {
		if sess.UserID == userID && !sess.Status.Terminal() {
			open = append(open, sess.Clone())
		}
	}
	return open, nil
}

func (s memSessions) ListIdleBefore(ctx context.Context, cutoff time.Time, limit int) ([]*session.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	idle := []*session.Session{}
	for _, sess := range s.m.sessions {
		if !sess.Status.Terminal() && sess.UpdatedAt.Before(cutoff) && len(idle) < limit {
			idle = append(idle, sess.Clone())
		}
	}
	return idle, nil
}

func (s memSessions) WithTx(*sql.Tx) store.SessionStore { return s }

type memPrefs struct{ m *memStore }

func (p memPrefs) Get(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	prefs, ok := p.m.prefs[userID]
	if !ok {
		return domain.DefaultReviewPreferences(userID), nil
	}
	clone := *prefs
	return &clone, nil
}

func (p memPrefs) Upsert(ctx context.Context, prefs *domain.ReviewPreferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	clone := *prefs
	p.m.prefs[prefs.UserID] = &clone
	return nil
}

func (p memPrefs) WithTx(*sql.Tx) store.PreferencesStore { return p }

// MockCardStateStore is a testify mock of store.CardStateStore.
type MockCardStateStore struct {
	mock.Mock
}

func (m *MockCardStateStore) Create(ctx context.Context, card *domain.CardState) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStateStore) Get(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardState), args.Error(1)
}

func (m *MockCardStateStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardState), args.Error(1)
}

func (m *MockCardStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CardState), args.Error(1)
}

func (m *MockCardStateStore) Update(ctx context.Context, card *domain.CardState) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStateStore) WithTx(tx *sql.Tx) store.CardStateStore {
	return m
}
