package store

import (
	"context"

	"github.com/NomadCrew/feedback-desk/types"
)

// FeedbackStore persists feedback entries. Listings preserve insertion order
// and unknown ids yield ErrNotFound.
type FeedbackStore interface {
	// CreateFeedback appends fb as given and returns its id. Input is trusted;
	// validation happens before a record is built.
	CreateFeedback(ctx context.Context, fb *types.Feedback) (string, error)
	GetFeedback(ctx context.Context, id string) (*types.Feedback, error)
	ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error)
	// UpdateFeedbackStatus writes status without checking it against the
	// known statuses. It returns the updated entry and the status it replaced,
	// both read in the same step as the write.
	UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, types.FeedbackStatus, error)
	DeleteFeedback(ctx context.Context, id string) error
	FeedbackStats(ctx context.Context) (*types.FeedbackStats, error)
	Ping(ctx context.Context) error
}
