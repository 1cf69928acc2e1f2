package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/internal/clock"
	"github.com/NomadCrew/feedback-desk/models/feedback/validation"
	"github.com/NomadCrew/feedback-desk/types"
)

var (
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrFormClosed       = errors.New("form closed")
)

// SubmitErrorField is the Errors key holding a submission failure message.
const SubmitErrorField = "submit"

// DefaultConfirmation is how long the confirmation stays up before the
// form resets and closes.
const DefaultConfirmation = 2 * time.Second

type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Form is the interactive submission flow:
//
//	editing -> submitting -> submitted -> editing
//
// Pending latency and confirmation continuations are bound to the form's
// lifetime and are abandoned by Close.
type Form struct {
	submitter    *Submitter
	onClose      func()
	confirmation time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	draft   types.FeedbackDraft
	errs    validation.FieldErrors
	record  *types.Feedback
	confirm *clock.Timer
	closed  bool
}

type FormOption func(*Form)

// WithConfirmation sets how long the submitted state lasts.
func WithConfirmation(d time.Duration) FormOption {
	return func(f *Form) { f.confirmation = d }
}

// NewForm returns a form in the editing state with an empty draft. onClose
// runs after the confirmation interval and on Cancel; it may be nil.
func NewForm(submitter *Submitter, onClose func(), opts ...FormOption) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		submitter:    submitter,
		onClose:      onClose,
		confirmation: DefaultConfirmation,
		ctx:          ctx,
		cancel:       cancel,
		draft:        types.EmptyDraft(),
		errs:         validation.FieldErrors{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Draft() types.FeedbackDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns a copy of the current per-field messages, including a
// "submit" entry after a failed submission.
func (f *Form) Errors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(validation.FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Record returns the last accepted entry while the confirmation is shown.
func (f *Form) Record() *types.Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSubmitted {
		return nil
	}
	return f.record.Clone()
}

// SetDraft replaces the draft while editing. Messages for fields that
// changed are cleared.
func (f *Form) SetDraft(d types.FeedbackDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormClosed
	}
	if f.state != StateEditing {
		return ErrSubmitInProgress
	}

	prev := f.draft
	changed := map[string]bool{
		"name":    prev.Name != d.Name,
		"email":   prev.Email != d.Email,
		"subject": prev.Subject != d.Subject,
		"message": prev.Message != d.Message,
		"rating":  prev.Rating != d.Rating,
	}
	for field, diff := range changed {
		if diff {
			delete(f.errs, field)
		}
	}
	f.draft = d
	return nil
}

// Submit validates draft and, when valid, runs it through the submitter.
// The returned error is only set for misuse: a submit while one is already
// pending, or on a closed form.
func (f *Form) Submit(ctx context.Context, draft types.FeedbackDraft) (Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Result{}, ErrFormClosed
	}
	if f.state != StateEditing {
		f.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	}
	f.draft = draft
	if errs := validation.Validate(draft); !errs.Valid() {
		f.errs = errs
		f.mu.Unlock()
		return Result{Outcome: OutcomeInvalid, Errors: errs}, nil
	}
	f.state = StateSubmitting
	f.errs = validation.FieldErrors{}
	f.mu.Unlock()

	// Derived from the form lifetime so Close cancels it synchronously.
	// Cancellation of the caller's ctx is forwarded.
	subCtx, cancel := context.WithCancel(f.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	res := f.submitter.deliver(subCtx, draft)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		// A record the sink already stored stays accepted; only the
		// confirmation is skipped.
		if res.Outcome == OutcomeAccepted {
			return res, nil
		}
		return Result{Outcome: OutcomeFailed, Err: ErrFormClosed}, ErrFormClosed
	}
	if res.Outcome != OutcomeAccepted {
		f.state = StateEditing
		f.errs = validation.FieldErrors{SubmitErrorField: apperrors.SubmissionFailedMessage}
		f.mu.Unlock()
		return res, nil
	}
	f.state = StateSubmitted
	f.record = res.Record
	f.mu.Unlock()

	timer := f.submitter.clock.AfterFunc(f.confirmation, f.finish)
	f.mu.Lock()
	if f.closed {
		timer.Stop()
	} else if f.state == StateSubmitted {
		f.confirm = timer
	}
	f.mu.Unlock()

	return res, nil
}

// finish ends the confirmation: the draft resets and the host is told to
// close the form.
func (f *Form) finish() {
	f.mu.Lock()
	if f.closed || f.state != StateSubmitted {
		f.mu.Unlock()
		return
	}
	f.state = StateEditing
	f.draft = types.EmptyDraft()
	f.errs = validation.FieldErrors{}
	f.record = nil
	f.confirm = nil
	onClose := f.onClose
	f.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// Cancel is the user backing out: the form is torn down and onClose runs.
// It does nothing on a form that is already closed.
func (f *Form) Cancel() {
	if !f.teardown() {
		return
	}
	if f.onClose != nil {
		f.onClose()
	}
}

// Close tears the form down without notifying the host. A pending latency
// wait ends without reaching the sink and a pending confirmation never
// resets the draft or calls onClose.
func (f *Form) Close() {
	f.teardown()
}

func (f *Form) teardown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.closed = true
	if f.confirm != nil {
		f.confirm.Stop()
		f.confirm = nil
	}
	f.cancel()
	return true
}

// Closed reports whether Close or Cancel has run.
func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
