package services

import (
	"context"
	"errors"

	"github.com/NomadCrew/feedback-desk/types"
)

// ErrEmailQueueFull is returned when a confirmation could not be queued.
var ErrEmailQueueFull = errors.New("email queue full")

// ConfirmationSender sends the confirmation for an accepted entry.
type ConfirmationSender interface {
	SendFeedbackConfirmation(ctx context.Context, fb *types.Feedback) error
}

// AsyncEmailer queues confirmations on a worker pool so a submission never
// waits on the email provider.
type AsyncEmailer struct {
	sender ConfirmationSender
	pool   *WorkerPool
}

func NewAsyncEmailer(sender ConfirmationSender, pool *WorkerPool) *AsyncEmailer {
	return &AsyncEmailer{sender: sender, pool: pool}
}

// SendFeedbackConfirmation queues the email and returns immediately. A done
// ctx queues nothing. The send itself runs under the pool's job context, so
// it outlives the request that queued it.
func (e *AsyncEmailer) SendFeedbackConfirmation(ctx context.Context, fb *types.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record := fb.Clone()
	ok := e.pool.Submit(Job{
		Name: "feedback-confirmation:" + record.ID,
		Execute: func(ctx context.Context) error {
			return e.sender.SendFeedbackConfirmation(ctx, record)
		},
	})
	if !ok {
		return ErrEmailQueueFull
	}
	return nil
}
