package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/domain/selection"
	"github.com/phrazzld/vocab-api/internal/domain/session"
	"github.com/phrazzld/vocab-api/internal/service/review"
	"github.com/stretchr/testify/mock"
)

// MockReviewService is a testify mock of review.Service.
type MockReviewService struct {
	mock.Mock
}

var _ review.Service = (*MockReviewService)(nil)

func cardResult(args mock.Arguments) (*domain.CardState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardState), args.Error(1)
}

func sessionResult(args mock.Arguments) (*session.Session, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockReviewService) EnrollCard(ctx context.Context, userID uuid.UUID, req review.EnrollRequest) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, req))
}

func (m *MockReviewService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, cardID))
}

func (m *MockReviewService) ListCards(ctx context.Context, userID uuid.UUID) ([]*domain.CardState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CardState), args.Error(1)
}

func (m *MockReviewService) PreviewQueue(ctx context.Context, userID uuid.UUID, policy selection.Policy) ([]*domain.CardState, error) {
	args := m.Called(ctx, userID, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CardState), args.Error(1)
}

func (m *MockReviewService) AvailableModes(ctx context.Context, userID uuid.UUID) ([]selection.Mode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]selection.Mode), args.Error(1)
}

func (m *MockReviewService) SuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, cardID))
}

func (m *MockReviewService) UnsuspendCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, cardID))
}

func (m *MockReviewService) ResetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, cardID))
}

func (m *MockReviewService) PostponeCard(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.CardState, error) {
	return cardResult(m.Called(ctx, userID, cardID, days))
}

func (m *MockReviewService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.ReviewPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewPreferences), args.Error(1)
}

func (m *MockReviewService) UpdatePreferences(ctx context.Context, prefs *domain.ReviewPreferences) error {
	return m.Called(ctx, prefs).Error(0)
}

func (m *MockReviewService) StartSession(ctx context.Context, userID uuid.UUID, req review.StartSessionRequest) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, req))
}

func (m *MockReviewService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID))
}

func (m *MockReviewService) SubmitReview(ctx context.Context, userID, sessionID uuid.UUID, sub session.Submission) (*review.SubmitResult, error) {
	args := m.Called(ctx, userID, sessionID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.SubmitResult), args.Error(1)
}

func (m *MockReviewService) SkipCard(ctx context.Context, userID, sessionID, cardID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID, cardID))
}

func (m *MockReviewService) PauseSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID))
}

func (m *MockReviewService) ResumeSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID))
}

func (m *MockReviewService) CancelSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID))
}

func (m *MockReviewService) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*session.Session, error) {
	return sessionResult(m.Called(ctx, userID, sessionID))
}

func (m *MockReviewService) SessionStatistics(ctx context.Context, userID, sessionID uuid.UUID) (*session.Statistics, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Statistics), args.Error(1)
}

func (m *MockReviewService) ExpireIdleSessions(ctx context.Context, idle time.Duration) (int, error) {
	args := m.Called(ctx, idle)
	return args.Int(0), args.Error(1)
}
