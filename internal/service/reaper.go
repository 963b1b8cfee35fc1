package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	obserrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/errors"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/metrics"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.ReaperRepository // Required: reaper repository
	Config  config.ReaperConfig   // Required: reaper configuration
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metrics sink (StatsD-compatible)
}

// ReaperService keeps the jobs table bounded.
//
// Each pass:
//   - fails waiting jobs that were never picked up within PendingMaxAge
//   - deletes completed jobs older than CompletedMaxAge
//   - deletes failed jobs older than FailedMaxAge
//
// Every operation runs in batches until a batch affects no rows.
type ReaperService struct {
	repo    core.ReaperRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ReaperRepository is required")
	}
	if opts.Config.BatchSize <= 0 {
		return nil, errors.New("reaper batch size must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reaper_service")
	logger.Debug("ReaperService initialized",
		"interval", opts.Config.Interval,
		"pending_max_age", opts.Config.PendingMaxAge,
		"completed_max_age", opts.Config.CompletedMaxAge,
		"failed_max_age", opts.Config.FailedMaxAge,
	)

	return &ReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)

	// Replicas started together spread their first pass.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(ctx, err, "initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(ctx, err, "cleanup")
			}
		}
	}
}

// waitWithJitter sleeps a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	timer := time.NewTimer(time.Duration(int64(jitterNanos))) // #nosec G115 - bounded by maxJitter
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// reaperOp is one batched housekeeping operation.
type reaperOp struct {
	name   string // metric tag
	label  string // log and error prefix
	maxAge time.Duration
	batch  func(context.Context) (int64, error)
}

type reaperOpOutcome struct {
	op    reaperOp
	count int64
	err   error
}

func (s *ReaperService) operations() []reaperOp {
	deleteState := func(state model.JobState, maxAge time.Duration) func(context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) {
			return s.repo.DeleteOldJobs(ctx, core.DeleteOldJobsParams{
				State:     state,
				MaxAge:    maxAge,
				BatchSize: s.config.BatchSize,
			})
		}
	}
	return []reaperOp{
		{
			name:   "fail_pending",
			label:  "fail stale waiting jobs",
			maxAge: s.config.PendingMaxAge,
			batch: func(ctx context.Context) (int64, error) {
				return s.repo.FailStalePendingJobs(ctx, s.config.PendingMaxAge, s.config.BatchSize)
			},
		},
		{
			name:   "delete_completed",
			label:  "delete old completed jobs",
			maxAge: s.config.CompletedMaxAge,
			batch:  deleteState(model.JobStateCompleted, s.config.CompletedMaxAge),
		},
		{
			name:   "delete_failed",
			label:  "delete old failed jobs",
			maxAge: s.config.FailedMaxAge,
			batch:  deleteState(model.JobStateFailed, s.config.FailedMaxAge),
		},
	}
}

// RunOnce performs one cleanup pass. Failed operations do not stop the remaining ones.
func (s *ReaperService) RunOnce(ctx context.Context) error {
	start := time.Now()

	ops := s.operations()
	outcomes := make([]reaperOpOutcome, 0, len(ops))
	var errs []error
	allCanceled := true
	for _, op := range ops {
		count, err := s.drain(ctx, op)
		outcomes = append(outcomes, reaperOpOutcome{op: op, count: count, err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", op.label, err))
			allCanceled = allCanceled && isContextCancellation(err)
		}
	}

	s.emitCleanupMetrics(outcomes, time.Since(start))

	if len(errs) == 0 {
		return nil
	}
	joined := errors.Join(errs...)
	if allCanceled {
		return context.Canceled
	}
	return fmt.Errorf("cleanup failed: %w", joined)
}

// drain repeats op until a batch affects no rows.
func (s *ReaperService) drain(ctx context.Context, op reaperOp) (int64, error) {
	var total int64
	for {
		count, err := op.batch(ctx)
		if err != nil {
			return total, err
		}
		total += count
		if count == 0 {
			break
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	if total > 0 {
		s.logger.InfoContext(ctx, op.label, "count", total, "max_age", op.maxAge)
	}
	return total, nil
}

func (s *ReaperService) emitCleanupMetrics(outcomes []reaperOpOutcome, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	var total int64
	var firstErr error
	for _, o := range outcomes {
		err := suppressContextCancellation(o.err)
		total += o.count
		if firstErr == nil {
			firstErr = err
		}
		s.emitOperationMetric(o.op.name, o.count, err)
	}

	tags := map[string]string{"result": resultTag(total, firstErr)}
	if firstErr != nil {
		tags["error_class"] = obserrors.Classify(firstErr)
	}

	s.metrics.Count("reaper.cleanup", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("reaper.cleanup_duration", elapsed, maps.Clone(tags))
	}
	if firstErr == nil {
		s.metrics.Gauge("reaper.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func (s *ReaperService) emitOperationMetric(operation string, count int64, err error) {
	tags := map[string]string{
		"operation": operation,
		"result":    resultTag(count, err),
	}
	if err != nil {
		tags["error_class"] = obserrors.Classify(err)
	}

	s.metrics.Count("reaper.cleanup_operation", 1, tags)
	if err == nil && count > 0 {
		s.metrics.Count("reaper.jobs_processed", count, maps.Clone(tags))
	}
}

func resultTag(count int64, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case count == 0:
		return metrics.ResultNoop
	default:
		return metrics.ResultSuccess
	}
}

func (s *ReaperService) logCleanupError(ctx context.Context, err error, label string) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, label+" cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
