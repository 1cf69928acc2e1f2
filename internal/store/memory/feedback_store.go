// Package memory holds feedback entries in process memory. It backs the
// console and is the server's default driver.
package memory

import (
	"context"
	"sync"

	"github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/google/uuid"
)

// Ensure FeedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*FeedbackStore)(nil)

// FeedbackStore keeps entries in insertion order. Every read returns copies
// so callers cannot mutate stored entries.
type FeedbackStore struct {
	mu    sync.RWMutex
	items []*types.Feedback
	index map[string]int
}

// NewFeedbackStore returns a store holding copies of initial, in order.
func NewFeedbackStore(initial ...*types.Feedback) *FeedbackStore {
	s := &FeedbackStore{index: make(map[string]int, len(initial))}
	for _, fb := range initial {
		if fb == nil {
			continue
		}
		_, _ = s.insert(fb)
	}
	return s
}

func (s *FeedbackStore) CreateFeedback(ctx context.Context, fb *types.Feedback) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(fb)
}

// insert must be called with s.mu held, or before s is shared.
func (s *FeedbackStore) insert(fb *types.Feedback) (string, error) {
	rec := fb.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := s.index[rec.ID]; exists {
		return "", store.ErrConflict
	}
	s.index[rec.ID] = len(s.items)
	s.items = append(s.items, rec)
	return rec.ID, nil
}

func (s *FeedbackStore) GetFeedback(ctx context.Context, id string) (*types.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.items[i].Clone(), nil
}

func (s *FeedbackStore) ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Feedback, 0, len(s.items))
	for _, fb := range s.items {
		if filter.Matches(fb) {
			out = append(out, fb.Clone())
		}
	}
	return out, nil
}

func (s *FeedbackStore) UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, types.FeedbackStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	previous := s.items[i].Status
	s.items[i].Status = status
	return s.items[i].Clone(), previous, nil
}

func (s *FeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return store.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return nil
}

func (s *FeedbackStore) FeedbackStats(ctx context.Context) (*types.FeedbackStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newCount, inProgress, resolved int
	var ratingSum int64
	for _, fb := range s.items {
		switch fb.Status {
		case types.FeedbackStatusNew:
			newCount++
		case types.FeedbackStatusInProgress:
			inProgress++
		case types.FeedbackStatusResolved:
			resolved++
		}
		ratingSum += int64(fb.Rating)
	}
	return types.NewFeedbackStats(len(s.items), newCount, inProgress, resolved, ratingSum), nil
}

func (s *FeedbackStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored entries.
func (s *FeedbackStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
