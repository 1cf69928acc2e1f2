package service

import (
	"context"

	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
)

// FeedbackServiceInterface is what the HTTP handlers and the console use.
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, draft types.FeedbackDraft) submission.Result
	GetFeedback(ctx context.Context, id string) (*types.Feedback, error)
	ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error)
	FeedbackStats(ctx context.Context) (*types.FeedbackStats, error)
	UpdateStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// Emailer sends the submitter a confirmation for an accepted entry.
type Emailer interface {
	SendFeedbackConfirmation(ctx context.Context, fb *types.Feedback) error
}
