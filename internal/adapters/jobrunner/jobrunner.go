// Package jobrunner runs the single research worker loop.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/metrics"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

// Processor executes one reserved job and records its outcome.
type Processor interface {
	Process(ctx context.Context, job *model.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job *model.Job) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, job *model.Job) error { return f(ctx, job) }

const (
	defaultPollInterval      = time.Second
	defaultLockRetryInterval = 5 * time.Second
	defaultHeartbeatInterval = 10 * time.Second
	// maxReserveFailures is how many consecutive reserve errors the loop tolerates before giving up.
	maxReserveFailures = 5
)

// RunnerOptions configures the job runner adapter.
type RunnerOptions struct {
	Jobs      *service.JobService // Required
	Processor Processor           // Required
	Logger    *slog.Logger

	// Lock makes this process the only active worker. Nil runs without cluster exclusivity.
	Lock              core.WorkerLock
	LockRetryInterval time.Duration

	// Heartbeat is refreshed every HeartbeatInterval and expires after HeartbeatTTL.
	Heartbeat         core.WorkerHeartbeat
	HeartbeatInterval time.Duration
	HeartbeatTTL      time.Duration

	// PollInterval is the fallback re-check period when no notification arrives.
	PollInterval time.Duration
	Metrics      statsd.Sink
}

// Runner pulls research jobs one at a time and hands them to the processor.
// Concurrency is fixed at one.
type Runner struct {
	jobs              *service.JobService
	processor         Processor
	logger            *slog.Logger
	lock              core.WorkerLock
	lockRetry         time.Duration
	heartbeat         core.WorkerHeartbeat
	heartbeatInterval time.Duration
	heartbeatTTL      time.Duration
	poll              time.Duration
	metrics           statsd.Sink
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// NewRunner constructs a job runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}
	if opts.Processor == nil {
		return nil, errors.New("Processor is required")
	}
	interval := durationOr(opts.HeartbeatInterval, defaultHeartbeatInterval)
	return &Runner{
		jobs:              opts.Jobs,
		processor:         opts.Processor,
		logger:            resolveLogger(opts.Logger).With("component", "job_runner"),
		lock:              opts.Lock,
		lockRetry:         durationOr(opts.LockRetryInterval, defaultLockRetryInterval),
		heartbeat:         opts.Heartbeat,
		heartbeatInterval: interval,
		heartbeatTTL:      durationOr(opts.HeartbeatTTL, 3*interval),
		poll:              durationOr(opts.PollInterval, defaultPollInterval),
		metrics:           opts.Metrics,
	}, nil
}

// Run waits for the worker lock, then processes jobs until ctx is cancelled.
// It returns nil on cancellation and an error when the queue stays unreachable.
func (r *Runner) Run(ctx context.Context) error {
	release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	if release == nil {
		return nil
	}
	defer release()

	r.logger.InfoContext(ctx, "starting job runner",
		"type", model.JobTypeResearch,
		"workers", 1,
		"attempt_timeout", r.jobs.AttemptTimeout(),
		"poll_interval", r.poll,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wakeup, err := domainjob.NewWakeup(domainjob.WakeupOptions{
		Waiter:     queueWaiter{jobs: r.jobs},
		JobType:    model.JobTypeResearch,
		WaitWindow: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create wakeup: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		wakeup.Run(ctx)
	}()
	if r.heartbeat != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.beatLoop(ctx)
		}()
	}

	loopErr := r.workerLoop(ctx, wakeup.C())
	cancel()
	wg.Wait()

	if loopErr != nil {
		return loopErr
	}
	r.logger.Info("job runner stopped")
	return nil
}

// acquire blocks until the lock is held. A nil release with a nil error means ctx ended first.
func (r *Runner) acquire(ctx context.Context) (func(), error) {
	if r.lock == nil {
		return func() {}, nil
	}
	standby := false
	for {
		release, ok, err := r.lock.TryAcquire(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, nil
		case err != nil:
			r.logger.WarnContext(ctx, "worker lock unavailable", "error", err)
		case ok:
			if standby {
				r.logger.InfoContext(ctx, "worker lock acquired, leaving standby")
			}
			return release, nil
		case !standby:
			standby = true
			r.logger.InfoContext(ctx, "another worker holds the lock, standing by", "retry", r.lockRetry)
		}

		timer := time.NewTimer(r.lockRetry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil
		case <-timer.C:
		}
	}
}

func (r *Runner) workerLoop(ctx context.Context, notify <-chan struct{}) error {
	failures := 0
	for ctx.Err() == nil {
		job, err := r.jobs.ReserveNext(ctx)
		switch {
		case err == nil:
			failures = 0
			r.processJob(ctx, job)
		case errors.Is(err, model.ErrNoJobsAvailable):
			failures = 0
			if !r.waitForWork(ctx, notify) {
				return nil
			}
		case ctx.Err() != nil:
			return nil
		default:
			failures++
			metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
				JobType:    string(model.JobTypeResearch),
				Transition: metrics.TransitionReserve,
				Result:     metrics.ResultError,
				Err:        err,
			})
			if failures >= maxReserveFailures {
				return fmt.Errorf("reserve next: %w", err)
			}
			r.logger.WarnContext(ctx, "reserve failed, retrying", "error", err, "failures", failures)
			if !r.waitForWork(ctx, nil) {
				return nil
			}
		}
	}
	return nil
}

// waitForWork returns false when ctx ended.
func (r *Runner) waitForWork(ctx context.Context, notify <-chan struct{}) bool {
	timer := time.NewTimer(r.poll)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-notify:
		return true
	case <-timer.C:
		return true
	}
}

func (r *Runner) processJob(ctx context.Context, job *model.Job) {
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		JobType:    string(job.Type),
		Transition: metrics.TransitionReserve,
		Result:     metrics.ResultSuccess,
		Attempt:    job.AttemptsMade,
	})
	r.logger.InfoContext(ctx, "processing job",
		"job_id", job.ID,
		"attempt", job.AttemptsMade,
		"max_attempts", job.MaxAttempts,
	)
	if err := r.processor.Process(ctx, job); err != nil {
		// The lease expires and the job is retried by a later reservation.
		r.logger.ErrorContext(ctx, "record job outcome", "job_id", job.ID, "error", err)
	}
}

func (r *Runner) beatLoop(ctx context.Context) {
	beat := func() {
		if err := r.heartbeat.Beat(ctx, r.heartbeatTTL); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "worker heartbeat failed", "error", err)
		}
	}
	beat()
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beat()
		}
	}
}

// queueWaiter adapts JobService to the wakeup's Waiter.
type queueWaiter struct {
	jobs *service.JobService
}

func (q queueWaiter) WaitForNotification(ctx context.Context, _ model.JobType) error {
	return q.jobs.WaitForNotification(ctx)
}
