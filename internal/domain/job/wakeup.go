package job

import (
	"context"
	"errors"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// ErrWaiterRequired indicates a wakeup cannot be constructed without a waiter.
var ErrWaiterRequired = errors.New("wakeup waiter is required")

// Waiter blocks until the queue announces new work for jobType or ctx ends.
type Waiter interface {
	WaitForNotification(ctx context.Context, jobType model.JobType) error
}

// WakeupOptions configure a Wakeup.
type WakeupOptions struct {
	Waiter     Waiter
	JobType    model.JobType
	WaitWindow time.Duration
	Backoff    time.Duration
}

// Wakeup turns queue notifications into a coalescing signal channel for one consumer.
// Every return from the waiter, including a window timeout, produces a signal so the
// consumer also re-polls periodically.
type Wakeup struct {
	waiter     Waiter
	jobType    model.JobType
	waitWindow time.Duration
	backoff    time.Duration
	ch         chan struct{}
}

// NewWakeup constructs a Wakeup.
func NewWakeup(opts WakeupOptions) (*Wakeup, error) {
	if opts.Waiter == nil {
		return nil, ErrWaiterRequired
	}
	jobType := opts.JobType
	if jobType == "" {
		jobType = model.JobTypeResearch
	}
	waitWindow := opts.WaitWindow
	if waitWindow <= 0 {
		waitWindow = time.Minute
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	return &Wakeup{
		waiter:     opts.Waiter,
		jobType:    jobType,
		waitWindow: waitWindow,
		backoff:    backoff,
		ch:         make(chan struct{}, 1),
	}, nil
}

// C returns the signal channel. It is never closed.
func (w *Wakeup) C() <-chan struct{} {
	return w.ch
}

// Run listens until ctx is cancelled.
func (w *Wakeup) Run(ctx context.Context) {
	for ctx.Err() == nil {
		waitCtx, cancel := context.WithTimeout(ctx, w.waitWindow)
		err := w.waiter.WaitForNotification(waitCtx, w.jobType)
		cancel()

		w.signal()

		if err != nil && ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) {
			timer := time.NewTimer(w.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

func (w *Wakeup) signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
