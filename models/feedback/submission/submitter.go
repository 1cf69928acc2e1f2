// Package submission turns feedback drafts into stored entries. Submitter is
// the stateless pipeline; Form wraps it in the interactive state machine.
package submission

import (
	"context"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/internal/clock"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/models/feedback/validation"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeAccepted Outcome = iota + 1
	OutcomeInvalid
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of one submission. Exactly one of Record, Errors
// and Err is set, matching Outcome.
type Result struct {
	Outcome Outcome
	Record  *types.Feedback
	Errors  validation.FieldErrors
	Err     error
}

// Message returns the text shown to the submitter for a failed result.
func (r Result) Message() string {
	if r.Outcome == OutcomeFailed {
		return apperrors.SubmissionFailedMessage
	}
	return ""
}

// Sink receives each accepted entry exactly once.
type Sink interface {
	Accept(ctx context.Context, fb *types.Feedback) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, fb *types.Feedback) error

func (f SinkFunc) Accept(ctx context.Context, fb *types.Feedback) error {
	return f(ctx, fb)
}

// Submitter validates a draft, waits the configured latency, builds the
// entry and hands it to the sink.
type Submitter struct {
	sink    Sink
	clock   clock.Clock
	latency time.Duration
	newID   func() string
	log     *zap.SugaredLogger
}

type Option func(*Submitter)

func WithClock(c clock.Clock) Option {
	return func(s *Submitter) { s.clock = c }
}

// WithLatency delays every valid submission by d before it reaches the sink.
func WithLatency(d time.Duration) Option {
	return func(s *Submitter) { s.latency = d }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Submitter) { s.newID = fn }
}

func NewSubmitter(sink Sink, opts ...Option) *Submitter {
	s := &Submitter{
		sink:  sink,
		clock: clock.Real(),
		newID: uuid.NewString,
		log:   logger.GetLogger().Named("submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the whole pipeline. An invalid draft never reaches the sink.
func (s *Submitter) Submit(ctx context.Context, draft types.FeedbackDraft) Result {
	if errs := validation.Validate(draft); !errs.Valid() {
		return Result{Outcome: OutcomeInvalid, Errors: errs}
	}
	return s.deliver(ctx, draft)
}

// deliver assumes draft already passed validation.
func (s *Submitter) deliver(ctx context.Context, draft types.FeedbackDraft) Result {
	if s.latency > 0 {
		select {
		case <-s.clock.After(s.latency):
		case <-ctx.Done():
			return failed(ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	record := draft.ToFeedback(s.newID(), s.clock.Now())
	if err := s.sink.Accept(ctx, record); err != nil {
		s.log.Warnw("Feedback submission failed",
			"error", err,
			"email", logger.MaskEmail(record.Email))
		return failed(err)
	}

	s.log.Infow("Feedback accepted",
		"feedbackId", record.ID,
		"category", record.Category,
		"rating", record.Rating)
	return Result{Outcome: OutcomeAccepted, Record: record}
}

func failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: apperrors.SubmissionFailed(err)}
}
