package handlers

import (
	"context"

	"github.com/NomadCrew/feedback-desk/models/feedback/service"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/stretchr/testify/mock"
)

// MockFeedbackService is the canonical service mock for handler tests.
type MockFeedbackService struct {
	mock.Mock
}

var _ service.FeedbackServiceInterface = (*MockFeedbackService)(nil)

func (m *MockFeedbackService) Submit(ctx context.Context, draft types.FeedbackDraft) submission.Result {
	args := m.Called(ctx, draft)
	return args.Get(0).(submission.Result)
}

func (m *MockFeedbackService) GetFeedback(ctx context.Context, id string) (*types.Feedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) FeedbackStats(ctx context.Context) (*types.FeedbackStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackStats), args.Error(1)
}

func (m *MockFeedbackService) UpdateStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Feedback), args.Error(1)
}

func (m *MockFeedbackService) DeleteFeedback(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthCheck)
}
