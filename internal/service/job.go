package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/metrics"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service/failurenotifier"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo            core.JobRepository       // Required: job repository
	LeasePolicy     *domainjob.LeasePolicy   // Required: attempt timeout and lease
	Backoff         domainjob.BackoffPolicy  // Optional: defaults to DefaultBackoffPolicy
	Logger          *slog.Logger             // Optional: structured logger
	Metrics         statsd.Sink              // Optional: queue depth gauges
	FailureNotifier *failurenotifier.Service // Optional: terminal failure fan-out
	Progress        core.ProgressPublisher   // Optional: terminal events for jobs failed by lease expiry
	Inflight        core.InflightStore       // Optional: idempotency keys released on lease-expiry failure
}

// JobService is the research queue facade used by the enrichment gate, the worker and the status API.
type JobService struct {
	repo            core.JobRepository
	leasePolicy     *domainjob.LeasePolicy
	backoff         domainjob.BackoffPolicy
	logger          *slog.Logger
	metrics         statsd.Sink
	failureNotifier *failurenotifier.Service
	progress        core.ProgressPublisher
	inflight        core.InflightStore
	now             func() time.Time
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.LeasePolicy == nil {
		return nil, errors.New("LeasePolicy is required")
	}

	backoff := opts.Backoff
	if backoff == (domainjob.BackoffPolicy{}) {
		backoff = domainjob.DefaultBackoffPolicy()
	}
	if err := backoff.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backoff policy: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "job_service")
	logger.Debug("JobService initialized",
		"attempt_timeout", opts.LeasePolicy.AttemptTimeout(),
		"lease", opts.LeasePolicy.Lease(),
		"max_attempts", backoff.MaxAttempts,
	)

	return &JobService{
		repo:            opts.Repo,
		leasePolicy:     opts.LeasePolicy,
		backoff:         backoff,
		logger:          logger,
		metrics:         opts.Metrics,
		failureNotifier: opts.FailureNotifier,
		progress:        opts.Progress,
		inflight:        opts.Inflight,
		now:             time.Now,
	}, nil
}

// Enqueue creates a waiting research job for pair.
// A duplicate in-flight job surfaces as an error matched by apperrors.IsInflightConflict.
func (s *JobService) Enqueue(ctx context.Context, pair model.ResearchPayload) (*model.Job, error) {
	if err := pair.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	payload, err := json.Marshal(pair)
	if err != nil {
		return nil, fmt.Errorf("encode research payload: %w", err)
	}

	job, err := s.repo.Create(ctx, &model.CreateJobRequest{
		Type:        model.JobTypeResearch,
		Payload:     payload,
		MaxAttempts: s.backoff.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("create research job: %w", err)
	}

	s.logger.DebugContext(ctx, "job created",
		"job_id", job.ID,
		"person_id", pair.PersonID,
		"company_id", pair.CompanyID,
	)
	return job, nil
}

// GetByID returns a job by its ID.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, model.ErrJobNotFound) {
		return nil, apperrors.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job by id %s: %w", id, err)
	}
	return job, nil
}

// GetStatus returns the polling view of a job.
func (s *JobService) GetStatus(ctx context.Context, id string) (*model.JobStatusResponse, error) {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := model.NewJobStatusResponse(job)
	return &resp, nil
}

// FindInFlight returns the waiting or active job for pair.
func (s *JobService) FindInFlight(ctx context.Context, pair model.ResearchPayload) (*model.Job, error) {
	job, err := s.repo.FindInFlight(ctx, pair)
	if errors.Is(err, model.ErrJobNotFound) {
		return nil, apperrors.NotFound("No in-flight job for pair")
	}
	if err != nil {
		return nil, fmt.Errorf("find in-flight job: %w", err)
	}
	return job, nil
}

// ReserveNext leases the next due research job. It returns model.ErrNoJobsAvailable when the queue is idle.
// Jobs whose final attempt outlived its lease are finalized first.
func (s *JobService) ReserveNext(ctx context.Context) (*model.Job, error) {
	s.failExpiredLeases(ctx)

	job, err := s.repo.ReserveNext(ctx, model.JobTypeResearch, s.leasePolicy.LeaseSeconds())
	if err != nil {
		if errors.Is(err, model.ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve next job: %w", err)
	}

	s.logger.DebugContext(ctx, "job reserved",
		"job_id", job.ID,
		"attempt", job.AttemptsMade,
		"lease_seconds", s.leasePolicy.LeaseSeconds(),
	)
	return job, nil
}

// failExpiredLeases gives jobs failed by lease expiry the same terminal handling as a failed attempt.
// Errors are logged; the next reservation retries.
func (s *JobService) failExpiredLeases(ctx context.Context) {
	failed, err := s.repo.FailExpiredLeases(ctx, model.JobTypeResearch)
	if err != nil {
		s.logger.WarnContext(ctx, "fail expired leases", "error", err)
		return
	}
	for _, job := range failed {
		cause := errors.New("lease expired before the attempt finished")
		if job.LastError != nil {
			cause = errors.New(*job.LastError)
		}
		s.logger.WarnContext(ctx, "job failed permanently",
			"job_id", job.ID,
			"attempts", job.AttemptsMade,
			"error", cause,
		)
		s.notifyFailure(ctx, job, cause)

		if s.progress != nil {
			ev := model.ProgressEvent{JobID: job.ID, Progress: job.Progress, State: model.JobStateFailed, Timestamp: s.now()}
			if err := s.progress.PublishProgress(ctx, ev); err != nil {
				s.logger.WarnContext(ctx, "publish progress", "job_id", job.ID, "error", err)
			}
		}
		if s.inflight != nil {
			pair, err := job.ResearchPayload()
			if err != nil {
				s.logger.WarnContext(ctx, "decode expired job payload", "job_id", job.ID, "error", err)
				continue
			}
			if err := s.inflight.Release(ctx, pair); err != nil {
				s.logger.WarnContext(ctx, "release in-flight key", "job_id", job.ID, "error", err)
			}
		}
	}
}

func (s *JobService) notifyFailure(ctx context.Context, job *model.Job, cause error) {
	if s.failureNotifier.Enabled() {
		s.failureNotifier.NotifyJobFailure(ctx, failurenotifier.PayloadFromJob(job, cause, s.now()))
	}
}

// WaitForNotification blocks until a research job is added or ctx ends.
func (s *JobService) WaitForNotification(ctx context.Context) error {
	return s.repo.WaitForNotification(ctx, model.JobTypeResearch)
}

// AttemptTimeout bounds one processing attempt.
func (s *JobService) AttemptTimeout() time.Duration {
	return s.leasePolicy.AttemptTimeout()
}

// Backoff returns the retry policy applied to failed attempts.
func (s *JobService) Backoff() domainjob.BackoffPolicy {
	return s.backoff
}

// SetProgress raises the stored progress of an active job.
func (s *JobService) SetProgress(ctx context.Context, id string, progress int) (int, error) {
	if progress < 0 || progress > 100 {
		return 0, apperrors.Validationf("progress must be between 0 and 100, got %d", progress)
	}
	stored, err := s.repo.SetProgress(ctx, id, progress)
	if err != nil {
		return 0, fmt.Errorf("set progress for job %s: %w", id, err)
	}
	return stored, nil
}

// Complete stores result on the job and marks it completed.
func (s *JobService) Complete(ctx context.Context, id string, result any) (bool, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("encode job result: %w", err)
	}
	completed, err := s.repo.Complete(ctx, id, raw)
	if err != nil {
		return false, fmt.Errorf("complete job %s: %w", id, err)
	}
	if completed {
		s.logger.DebugContext(ctx, "job completed", "job_id", id)
	}
	return completed, nil
}

// Fail records a failed attempt of job. The job is rescheduled with exponential backoff while
// attempts remain and otherwise becomes failed, in which case the failure notifier fires.
func (s *JobService) Fail(ctx context.Context, job *model.Job, cause error) (model.JobState, error) {
	if job == nil {
		return "", errors.New("job is required")
	}
	if cause == nil {
		return "", errors.New("failure cause is required")
	}

	delay := s.backoff.Delay(job.AttemptsMade)
	state, err := s.repo.Fail(ctx, model.FailJobParams{
		ID:         job.ID,
		Error:      cause.Error(),
		RetryDelay: delay,
	})
	if err != nil {
		return "", fmt.Errorf("fail job %s: %w", job.ID, err)
	}

	switch state {
	case model.JobStateWaiting:
		s.logger.InfoContext(ctx, "job attempt failed, retry scheduled",
			"job_id", job.ID,
			"attempt", job.AttemptsMade,
			"max_attempts", job.MaxAttempts,
			"retry_in", delay,
			"error", cause,
		)
	case model.JobStateFailed:
		s.logger.WarnContext(ctx, "job failed permanently",
			"job_id", job.ID,
			"attempts", job.AttemptsMade,
			"error", cause,
		)
		s.notifyFailure(ctx, job, cause)
	case model.JobStateActive, model.JobStateCompleted:
	}
	return state, nil
}

// Stats returns per-state counts of research jobs and reports them as gauges.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.repo.Stats(ctx, model.JobTypeResearch)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}
	metrics.EmitQueueDepth(s.metrics, metrics.QueueDepth{
		JobType:   string(model.JobTypeResearch),
		Waiting:   stats.Waiting,
		Active:    stats.Active,
		Completed: stats.Completed,
		Failed:    stats.Failed,
	})
	return stats, nil
}
