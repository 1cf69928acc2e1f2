// Package service is the single mutation path for feedback. HTTP handlers
// and the console both go through FeedbackService.
package service

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/internal/auth"
	"github.com/NomadCrew/feedback-desk/internal/clock"
	"github.com/NomadCrew/feedback-desk/internal/events"
	istore "github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const eventSource = "feedback-service"

// Config tunes a FeedbackService. Zero values give a lenient service with
// no latency, the default confirmation interval and the real clock.
type Config struct {
	StrictStatus  bool
	SubmitLatency time.Duration
	Confirmation  time.Duration
	Clock         clock.Clock
	NewID         func() string
	Registerer    prometheus.Registerer
}

type FeedbackService struct {
	store        istore.FeedbackStore
	publisher    types.EventPublisher
	emailer      Emailer
	submitter    *submission.Submitter
	strictStatus bool
	confirmation time.Duration
	metrics      *serviceMetrics
	log          *zap.SugaredLogger
}

// NewFeedbackService wires the store, event publisher and optional emailer.
// publisher and emailer may be nil.
func NewFeedbackService(store istore.FeedbackStore, publisher types.EventPublisher, emailer Emailer, cfg Config) *FeedbackService {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	confirmation := cfg.Confirmation
	if confirmation <= 0 {
		confirmation = submission.DefaultConfirmation
	}

	s := &FeedbackService{
		store:        store,
		publisher:    publisher,
		emailer:      emailer,
		strictStatus: cfg.StrictStatus,
		confirmation: confirmation,
		metrics:      newServiceMetrics(reg),
		log:          logger.GetLogger().Named("feedback"),
	}

	opts := []submission.Option{submission.WithLatency(cfg.SubmitLatency)}
	if cfg.Clock != nil {
		opts = append(opts, submission.WithClock(cfg.Clock))
	}
	if cfg.NewID != nil {
		opts = append(opts, submission.WithIDGenerator(cfg.NewID))
	}
	s.submitter = submission.NewSubmitter(s, opts...)
	return s
}

// Submit runs the submission pipeline with this service as the sink.
func (s *FeedbackService) Submit(ctx context.Context, draft types.FeedbackDraft) submission.Result {
	result := s.submitter.Submit(ctx, draft)
	s.metrics.submissions.WithLabelValues(result.Outcome.String()).Inc()
	return result
}

// NewForm returns an interactive form whose accepted drafts land in this
// service.
func (s *FeedbackService) NewForm(onClose func()) *submission.Form {
	return submission.NewForm(s.submitter, onClose, submission.WithConfirmation(s.confirmation))
}

// Accept stores an accepted record, then announces it. Event and email
// failures are logged and do not fail the submission.
func (s *FeedbackService) Accept(ctx context.Context, fb *types.Feedback) error {
	id, err := s.store.CreateFeedback(ctx, fb)
	if err != nil {
		return err
	}
	fb.ID = id

	s.publish(ctx, types.EventTypeFeedbackCreated, fb.ID, fb)

	if s.emailer != nil {
		if err := s.emailer.SendFeedbackConfirmation(ctx, fb); err != nil {
			s.log.Warnw("Failed to send feedback confirmation",
				"error", err,
				"feedbackId", fb.ID,
				"email", logger.MaskEmail(fb.Email))
		}
	}
	return nil
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id string) (*types.Feedback, error) {
	fb, err := s.store.GetFeedback(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	return fb, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error) {
	list, err := s.store.ListFeedback(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return list, nil
}

func (s *FeedbackService) FeedbackStats(ctx context.Context) (*types.FeedbackStats, error) {
	stats, err := s.store.FeedbackStats(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return stats, nil
}

// UpdateStatus replaces the status of an entry. Any transition is allowed;
// with strict status on, only the known statuses are.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error) {
	if s.strictStatus && !status.IsValid() {
		return nil, apperrors.InvalidStatus(string(status))
	}

	updated, previous, err := s.store.UpdateFeedbackStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	s.metrics.statusChanges.WithLabelValues(string(status)).Inc()

	staffID := auth.StaffIDFromContext(ctx)
	s.publish(ctx, types.EventTypeFeedbackStatusChanged, id, types.FeedbackStatusChangedEvent{
		FeedbackID: id,
		OldStatus:  previous,
		NewStatus:  status,
		ChangedBy:  staffID,
	})
	s.log.Infow("Feedback status changed",
		"feedbackId", id,
		"from", previous,
		"to", status,
		"staffId", staffID)
	return updated, nil
}

func (s *FeedbackService) DeleteFeedback(ctx context.Context, id string) error {
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		return s.mapStoreError(err, id)
	}
	s.metrics.deletions.Inc()

	staffID := auth.StaffIDFromContext(ctx)
	s.publish(ctx, types.EventTypeFeedbackDeleted, id, types.FeedbackDeletedEvent{
		FeedbackID: id,
		DeletedBy:  staffID,
	})
	s.log.Infow("Feedback deleted", "feedbackId", id, "staffId", staffID)
	return nil
}

func (s *FeedbackService) publish(ctx context.Context, eventType types.EventType, feedbackID string, data interface{}) {
	if s.publisher == nil {
		return
	}
	err := events.PublishEventWithContext(s.publisher, ctx, eventType, feedbackID,
		auth.StaffIDFromContext(ctx), data, eventSource)
	if err != nil {
		s.log.Warnw("Failed to publish feedback event", "error", err, "type", eventType, "feedbackId", feedbackID)
	}
}

func (s *FeedbackService) mapStoreError(err error, id string) error {
	if errors.Is(err, istore.ErrNotFound) {
		return apperrors.NotFound("Feedback", id)
	}
	return apperrors.NewDatabaseError(err)
}
