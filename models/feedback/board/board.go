// Package board holds the management view state: the filter inputs, the
// visible list and the record open in the detail pane.
package board

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	istore "github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/types"
)

// Backend is the feedback collection the board manages.
type Backend interface {
	ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error)
	GetFeedback(ctx context.Context, id string) (*types.Feedback, error)
	UpdateStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
	FeedbackStats(ctx context.Context) (*types.FeedbackStats, error)
}

type Board struct {
	mu      sync.Mutex
	backend Backend
	filter  types.FeedbackFilter
	detail  *types.Feedback
}

// New returns a board showing the whole collection.
func New(backend Backend) *Board {
	return &Board{
		backend: backend,
		filter:  types.MatchAllFilter(),
	}
}

func (b *Board) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Search = term
}

// SetStatusFilter takes a status value or types.FilterAll.
func (b *Board) SetStatusFilter(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Status = status
}

// SetCategoryFilter takes a category value or types.FilterAll.
func (b *Board) SetCategoryFilter(category string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Category = category
}

func (b *Board) Filter() types.FeedbackFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Visible lists the entries matching the current filter, in insertion order.
// It is recomputed on every call.
func (b *Board) Visible(ctx context.Context) ([]*types.Feedback, error) {
	return b.backend.ListFeedback(ctx, b.Filter())
}

// Open shows id in the detail pane.
func (b *Board) Open(ctx context.Context, id string) (*types.Feedback, error) {
	fb, err := b.backend.GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.detail = fb
	b.mu.Unlock()
	return fb.Clone(), nil
}

func (b *Board) CloseDetail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detail = nil
}

// Detail returns the open record, or nil when the detail pane is closed.
func (b *Board) Detail() *types.Feedback {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detail.Clone()
}

// SetStatus changes the status of id. An unknown id is ignored.
func (b *Board) SetStatus(ctx context.Context, id string, status types.FeedbackStatus) error {
	updated, err := b.backend.UpdateStatus(ctx, id, status)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.detail != nil && b.detail.ID == id {
		b.detail = updated
	}
	b.mu.Unlock()
	return nil
}

// Delete removes id and closes the detail pane if it was showing it.
func (b *Board) Delete(ctx context.Context, id string) error {
	err := b.backend.DeleteFeedback(ctx, id)
	if err != nil && !isNotFound(err) {
		return err
	}

	b.mu.Lock()
	if b.detail != nil && b.detail.ID == id {
		b.detail = nil
	}
	b.mu.Unlock()
	return nil
}

// Stats always covers the full collection, whatever the filter.
func (b *Board) Stats(ctx context.Context) (*types.FeedbackStats, error) {
	return b.backend.FeedbackStats(ctx)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, istore.ErrNotFound) {
		return true
	}
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Type == apperrors.NotFoundError
}
